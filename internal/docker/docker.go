// Package docker exposes a read-only view of local containers for the
// status API. Container lifecycle stays with shell commands issued through
// the bot; this is inspection only.
package docker

import (
	"context"
	"fmt"
	"strings"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/client"
)

// ContainerInfo is the trimmed-down container view the status API returns.
type ContainerInfo struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Image  string `json:"image"`
	State  string `json:"state"`
	Status string `json:"status"`
}

// ContainerList contains a list of containers
type ContainerList struct {
	Containers []ContainerInfo `json:"containers"`
	Total      int             `json:"total"`
}

// Inspector wraps the Docker API client.
type Inspector struct {
	client *client.Client
}

// NewInspector connects to the local Docker daemon.
func NewInspector() (*Inspector, error) {
	cli, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
	if err != nil {
		return nil, fmt.Errorf("failed to create docker client: %w", err)
	}

	return &Inspector{client: cli}, nil
}

// IsAvailable checks if the Docker daemon answers
func (i *Inspector) IsAvailable(ctx context.Context) bool {
	_, err := i.client.Ping(ctx)
	return err == nil
}

// Close closes the Docker client
func (i *Inspector) Close() error {
	return i.client.Close()
}

// ListContainers returns all containers, including stopped ones when all is
// set.
func (i *Inspector) ListContainers(ctx context.Context, all bool) (*ContainerList, error) {
	containers, err := i.client.ContainerList(ctx, container.ListOptions{All: all})
	if err != nil {
		return nil, fmt.Errorf("failed to list containers: %w", err)
	}

	var result []ContainerInfo
	for _, c := range containers {
		name := ""
		if len(c.Names) > 0 {
			name = strings.TrimPrefix(c.Names[0], "/")
		}

		result = append(result, ContainerInfo{
			ID:     c.ID[:12],
			Name:   name,
			Image:  c.Image,
			State:  c.State,
			Status: c.Status,
		})
	}

	return &ContainerList{
		Containers: result,
		Total:      len(result),
	}, nil
}
