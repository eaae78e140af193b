package pairing

import (
	"errors"
	"testing"

	"github.com/desertthunder/mediastats/internal/models"
	"github.com/desertthunder/mediastats/internal/shared"
)

func conn(address string, local, relay bool) models.Connection {
	return models.Connection{Protocol: "https", Address: address, Port: 32400, Local: local, Relay: relay}
}

func TestSelectConnection(t *testing.T) {
	tc := []struct {
		name     string
		conns    []models.Connection
		expected string
	}{
		{
			name:     "Local Wins Regardless Of Order",
			conns:    []models.Connection{conn("relay", false, true), conn("remote", false, false), conn("lan", true, false)},
			expected: "lan",
		},
		{
			name:     "Local Wins Even When Also Relay",
			conns:    []models.Connection{conn("remote", false, false), conn("odd", true, true)},
			expected: "odd",
		},
		{
			name:     "First Local When Several",
			conns:    []models.Connection{conn("lan-a", true, false), conn("lan-b", true, false)},
			expected: "lan-a",
		},
		{
			name:     "Direct Remote Over Relay",
			conns:    []models.Connection{conn("relay", false, true), conn("remote", false, false)},
			expected: "remote",
		},
		{
			name:     "All Relay Takes First",
			conns:    []models.Connection{conn("relay-a", false, true), conn("relay-b", false, true)},
			expected: "relay-a",
		},
		{
			name:     "Single Connection",
			conns:    []models.Connection{conn("only", false, true)},
			expected: "only",
		},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			got, err := SelectConnection(tt.conns)
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if got.Address != tt.expected {
				t.Errorf("expected %s, got %s", tt.expected, got.Address)
			}
		})
	}

	t.Run("Empty List Fails", func(t *testing.T) {
		if _, err := SelectConnection(nil); !errors.Is(err, shared.ErrNoConnections) {
			t.Errorf("expected ErrNoConnections, got %v", err)
		}
	})
}

func TestFilterServers(t *testing.T) {
	candidates := []models.ServerCandidate{
		{Name: "Home", Provides: "server", Presence: true, Connections: []models.Connection{conn("a", true, false)}},
		{Name: "Offline", Provides: "server", Presence: false, Connections: []models.Connection{conn("b", true, false)}},
		{Name: "Player", Provides: "client,player", Presence: true, Connections: []models.Connection{conn("c", true, false)}},
		{Name: "Bare", Provides: "server", Presence: true},
		{Name: "Combo", Provides: "client, server", Presence: true, Connections: []models.Connection{conn("d", false, true)}},
	}

	servers := FilterServers(candidates)
	if len(servers) != 2 {
		t.Fatalf("expected 2 servers, got %d", len(servers))
	}
	if servers[0].Name != "Home" || servers[1].Name != "Combo" {
		t.Errorf("expected Home and Combo in order, got %s and %s", servers[0].Name, servers[1].Name)
	}
}

func TestBuildChoices(t *testing.T) {
	servers := []models.ServerCandidate{
		{Name: "Home", Connections: []models.Connection{conn("relay", false, true), conn("lan", true, false)}},
		{Name: "Cabin", Connections: []models.Connection{conn("relay", false, true)}},
		{Name: "Empty"},
	}

	choices := BuildChoices(servers)
	if len(choices) != 2 {
		t.Fatalf("expected 2 choices, got %d", len(choices))
	}
	if choices[0].Connection.URL() != "https://lan:32400" {
		t.Errorf("expected local url, got %s", choices[0].Connection.URL())
	}
	if choices[1].Name != "Cabin" || !choices[1].Connection.Relay {
		t.Errorf("expected Cabin relay choice, got %+v", choices[1])
	}
}
