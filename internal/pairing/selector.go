package pairing

import (
	"github.com/desertthunder/mediastats/internal/models"
	"github.com/desertthunder/mediastats/internal/shared"
)

// SelectConnection picks one connection from conns.
//
// The first local connection wins, then the first non-relay connection, then the first
// connection of any kind. An empty list is an error.
func SelectConnection(conns []models.Connection) (models.Connection, error) {
	if len(conns) == 0 {
		return models.Connection{}, shared.ErrNoConnections
	}

	for _, c := range conns {
		if c.Local {
			return c, nil
		}
	}
	for _, c := range conns {
		if !c.Relay {
			return c, nil
		}
	}
	return conns[0], nil
}

// FilterServers keeps candidates that provide "server", are present, and advertise at least one connection.
func FilterServers(candidates []models.ServerCandidate) []models.ServerCandidate {
	servers := make([]models.ServerCandidate, 0, len(candidates))
	for _, c := range candidates {
		if c.IsServer() && c.Presence && len(c.Connections) > 0 {
			servers = append(servers, c)
		}
	}
	return servers
}

// BuildChoices pairs each server with its selected connection, preserving order.
func BuildChoices(servers []models.ServerCandidate) []models.ServerChoice {
	choices := make([]models.ServerChoice, 0, len(servers))
	for _, s := range servers {
		conn, err := SelectConnection(s.Connections)
		if err != nil {
			continue
		}
		choices = append(choices, models.ServerChoice{Name: s.Name, Connection: conn})
	}
	return choices
}
