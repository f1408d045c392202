// Package dispatcher is a reference container-backed worker dispatcher:
// it runs one task instruction per container and reports back whether
// the worker succeeded. It is the external-collaborator role described
// in the coordinator's assignment output — the orchestrator package
// hands it a task ID and agent type; what actually happens inside the
// container (which coding agent runs, how it edits files) is outside
// this module's scope.
package dispatcher

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/mount"
	"github.com/docker/docker/client"
	"github.com/docker/docker/pkg/stdcopy"

	"github.com/antigravity-dev/pec/internal/orchestrator"
)

// DockerDispatcher runs each task instruction inside its own container,
// named after the task id and a timestamp; sessions maps a task id to
// its container id so Cleanup can find it again.
type DockerDispatcher struct {
	mu    sync.Mutex
	cli   *client.Client
	image string
	sessions map[string]string
}

// NewDockerDispatcher connects using the ambient Docker environment
// (DOCKER_HOST, TLS certs, etc.) the way the CLI itself does.
func NewDockerDispatcher(image string) (*DockerDispatcher, error) {
	cli, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
	if err != nil {
		return nil, fmt.Errorf("dispatcher: connect to docker: %w", err)
	}
	if image == "" {
		image = "pec-worker:latest"
	}
	return &DockerDispatcher{cli: cli, image: image, sessions: make(map[string]string)}, nil
}

// Dispatch starts a container for the given task/agent pair, waits for
// it to exit, and returns the result as a DispatchOutcome. It satisfies
// orchestrator.Dispatcher.
func (d *DockerDispatcher) Dispatch(ctx context.Context, taskID, agent string) (orchestrator.DispatchOutcome, error) {
	sessionName := fmt.Sprintf("pec-worker-%s-%d", sanitize(taskID), time.Now().UnixNano())

	hostCtxDir := filepath.Join(os.TempDir(), "pec-ctx-"+sessionName)
	if err := os.MkdirAll(hostCtxDir, 0o755); err != nil {
		return orchestrator.DispatchOutcome{}, fmt.Errorf("dispatcher: create context dir: %w", err)
	}
	if err := os.WriteFile(filepath.Join(hostCtxDir, "task_id.txt"), []byte(taskID), 0o644); err != nil {
		return orchestrator.DispatchOutcome{}, fmt.Errorf("dispatcher: write task context: %w", err)
	}
	if err := os.WriteFile(filepath.Join(hostCtxDir, "agent.txt"), []byte(agent), 0o644); err != nil {
		return orchestrator.DispatchOutcome{}, fmt.Errorf("dispatcher: write agent context: %w", err)
	}

	cfg := &container.Config{
		Image: d.image,
		Cmd:   []string{"/bin/worker", "/pec-ctx/task_id.txt", "/pec-ctx/agent.txt"},
		Env:   []string{"PEC_TASK_ID=" + taskID, "PEC_AGENT=" + agent},
	}
	hostCfg := &container.HostConfig{
		Mounts: []mount.Mount{
			{Type: mount.TypeBind, Source: hostCtxDir, Target: "/pec-ctx", ReadOnly: true},
		},
		AutoRemove: false,
	}

	resp, err := d.cli.ContainerCreate(ctx, cfg, hostCfg, nil, nil, sessionName)
	if err != nil {
		return orchestrator.DispatchOutcome{}, fmt.Errorf("dispatcher: create container: %w", err)
	}

	d.mu.Lock()
	d.sessions[taskID] = resp.ID
	d.mu.Unlock()

	if err := d.cli.ContainerStart(ctx, resp.ID, container.StartOptions{}); err != nil {
		return orchestrator.DispatchOutcome{}, fmt.Errorf("dispatcher: start container: %w", err)
	}

	statusCh, errCh := d.cli.ContainerWait(ctx, resp.ID, container.WaitConditionNotRunning)
	select {
	case err := <-errCh:
		if err != nil {
			return orchestrator.DispatchOutcome{TaskID: taskID, Succeeded: false, Err: err.Error()}, nil
		}
	case status := <-statusCh:
		output, _ := d.captureOutput(ctx, resp.ID)
		if status.StatusCode != 0 {
			return orchestrator.DispatchOutcome{TaskID: taskID, Succeeded: false, Err: fmt.Sprintf("exit code %d: %s", status.StatusCode, output)}, nil
		}
		return orchestrator.DispatchOutcome{TaskID: taskID, Succeeded: true, ResultSummary: output}, nil
	}
	return orchestrator.DispatchOutcome{TaskID: taskID, Succeeded: false, Err: "unreachable"}, nil
}

func (d *DockerDispatcher) captureOutput(ctx context.Context, containerID string) (string, error) {
	logs, err := d.cli.ContainerLogs(ctx, containerID, container.LogsOptions{ShowStdout: true, ShowStderr: true})
	if err != nil {
		return "", err
	}
	defer logs.Close()

	var stdout, stderr bytes.Buffer
	if _, err := stdcopy.StdCopy(&stdout, &stderr, logs); err != nil {
		return "", err
	}
	return strings.TrimSpace(stdout.String() + stderr.String()), nil
}

// Cleanup removes the container backing taskID, if any.
func (d *DockerDispatcher) Cleanup(ctx context.Context, taskID string) error {
	d.mu.Lock()
	id, ok := d.sessions[taskID]
	delete(d.sessions, taskID)
	d.mu.Unlock()
	if !ok {
		return nil
	}
	return d.cli.ContainerRemove(ctx, id, container.RemoveOptions{Force: true, RemoveVolumes: true})
}

func sanitize(s string) string {
	return strings.Map(func(r rune) rune {
		if r == '/' || r == ' ' {
			return '-'
		}
		return r
	}, s)
}
