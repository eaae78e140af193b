package tasks

import (
	"context"

	"github.com/desertthunder/mediastats/internal/models"
	"github.com/desertthunder/mediastats/internal/services"
)

// CollectResourceUsage fetches active playbacks and summarizes them.
func CollectResourceUsage(ctx context.Context, server MediaServer) (*models.ResourceUsage, error) {
	items, err := server.Sessions(ctx)
	if err != nil {
		return nil, err
	}

	usage := &models.ResourceUsage{Sessions: SummarizeResources(items)}
	return usage, nil
}

// SummarizeResources counts transcodes and streams and splits bandwidth by network location.
//
// Anything not reported as "lan" is counted as WAN.
func SummarizeResources(items []services.Metadata) models.SessionResources {
	res := models.SessionResources{Streams: len(items)}

	for _, item := range items {
		if item.TranscodeSession != nil {
			res.Transcodes++
		}

		if item.Session == nil {
			continue
		}
		bandwidth := int64(item.Session.Bandwidth)
		res.Bandwidth.Total += bandwidth
		if item.Session.Location == "lan" {
			res.Bandwidth.LAN += bandwidth
		} else {
			res.Bandwidth.WAN += bandwidth
		}
	}
	return res
}
