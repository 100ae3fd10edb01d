package docker

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/image"
	"github.com/docker/docker/client"
	"github.com/docker/docker/pkg/stdcopy"
	"github.com/dontdude/goscribe/internal/domain"
)

// Paths inside the container. The job's scratch dir is bound to dataDir.
const (
	dataDir   = "/data"
	outputDir = dataDir + "/out"
)

// Options configures the WhisperX container.
type Options struct {
	Image       string
	Model       string
	Device      string
	ComputeType string
	BatchSize   int
	Language    string
	// HFToken enables speaker diarization; without it segments carry no speaker.
	HFToken  string
	MemoryMB int64
}

// Engine runs the WhisperX CLI in an ephemeral container per job.
type Engine struct {
	cli  *client.Client
	opts Options

	pullMu sync.Mutex
	pulled bool
}

var _ domain.Engine = (*Engine)(nil)

// NewEngine connects to the Docker daemon from the environment and verifies it with Ping.
func NewEngine(ctx context.Context, opts Options) (*Engine, error) {
	cli, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
	if err != nil {
		return nil, fmt.Errorf("failed to create docker client: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if _, err := cli.Ping(pingCtx); err != nil {
		_ = cli.Close()
		return nil, fmt.Errorf("failed to connect to docker daemon: %w", err)
	}

	slog.Info("Docker engine initialized", "image", opts.Image, "model", opts.Model)
	return &Engine{cli: cli, opts: opts}, nil
}

// Transcribe runs WhisperX on audioPath. The directory holding audioPath is
// mounted into the container and receives the JSON output.
func (e *Engine) Transcribe(ctx context.Context, audioPath string, opts domain.TranscribeOptions) ([]domain.Segment, error) {
	if err := e.ensureImage(ctx); err != nil {
		return nil, err
	}

	dir, name := filepath.Split(audioPath)
	dir = filepath.Clean(dir)

	// 1. Create container with limits
	hostCfg := &container.HostConfig{
		Binds: []string{dir + ":" + dataDir},
	}
	if e.opts.MemoryMB > 0 {
		hostCfg.Resources.Memory = e.opts.MemoryMB * 1024 * 1024
	}
	resp, err := e.cli.ContainerCreate(ctx, &container.Config{
		Image: e.opts.Image,
		Cmd:   e.args(name, opts),
	}, hostCfg, nil, nil, "")
	if err != nil {
		return nil, fmt.Errorf("failed to create container: %w", err)
	}
	defer func() {
		// Removal must happen even when ctx is already cancelled.
		rmCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 30*time.Second)
		defer cancel()
		if err := e.cli.ContainerRemove(rmCtx, resp.ID, container.RemoveOptions{Force: true}); err != nil {
			slog.Error("Failed to remove container", "containerID", resp.ID, "error", err)
		}
	}()

	// 2. Start and wait
	slog.Info("Starting transcription container", "containerID", resp.ID, "audio", name, "speakerRange", opts.HasSpeakerRange())
	if err := e.cli.ContainerStart(ctx, resp.ID, container.StartOptions{}); err != nil {
		return nil, fmt.Errorf("failed to start container: %w", err)
	}

	statusCh, errCh := e.cli.ContainerWait(ctx, resp.ID, container.WaitConditionNotRunning)
	select {
	case err := <-errCh:
		if err != nil {
			return nil, fmt.Errorf("failed waiting for container: %w", err)
		}
	case st := <-statusCh:
		if st.StatusCode != 0 {
			return nil, fmt.Errorf("whisperx exited with code %d: %s", st.StatusCode, e.stderrTail(ctx, resp.ID))
		}
	}

	// 3. Read output
	base := strings.TrimSuffix(name, filepath.Ext(name))
	return readOutput(filepath.Join(dir, "out", base+".json"))
}

func (e *Engine) ensureImage(ctx context.Context) error {
	e.pullMu.Lock()
	defer e.pullMu.Unlock()
	if e.pulled {
		return nil
	}

	slog.Info("Pulling image", "image", e.opts.Image)
	reader, err := e.cli.ImagePull(ctx, e.opts.Image, image.PullOptions{})
	if err != nil {
		return fmt.Errorf("failed to pull image %s: %w", e.opts.Image, err)
	}
	defer reader.Close()
	// Drain the response body so the pull completes.
	if _, err := io.Copy(io.Discard, reader); err != nil {
		return fmt.Errorf("failed to pull image %s: %w", e.opts.Image, err)
	}
	e.pulled = true
	return nil
}

// args builds the WhisperX command line for an audio file inside dataDir.
func (e *Engine) args(name string, opts domain.TranscribeOptions) []string {
	args := []string{
		dataDir + "/" + name,
		"--model", e.opts.Model,
		"--device", e.opts.Device,
		"--compute_type", e.opts.ComputeType,
		"--batch_size", strconv.Itoa(e.opts.BatchSize),
		"--output_dir", outputDir,
		"--output_format", "json",
	}
	if e.opts.Language != "" {
		args = append(args, "--language", e.opts.Language)
	}
	if e.opts.HFToken != "" {
		args = append(args, "--diarize", "--hf_token", e.opts.HFToken)
		if opts.HasSpeakerRange() {
			args = append(args,
				"--min_speakers", strconv.Itoa(opts.MinSpeakers),
				"--max_speakers", strconv.Itoa(opts.MaxSpeakers),
			)
		}
	}
	return args
}

func (e *Engine) stderrTail(ctx context.Context, id string) string {
	logs, err := e.cli.ContainerLogs(context.WithoutCancel(ctx), id, container.LogsOptions{
		ShowStderr: true,
		Tail:       "20",
	})
	if err != nil {
		return "logs unavailable"
	}
	defer logs.Close()

	var stdout, stderr bytes.Buffer
	if _, err := stdcopy.StdCopy(&stdout, &stderr, logs); err != nil {
		return "logs unavailable"
	}
	return strings.TrimSpace(stderr.String())
}

// whisperxOutput is the subset of the WhisperX JSON writer we read.
type whisperxOutput struct {
	Language string           `json:"language"`
	Segments []domain.Segment `json:"segments"`
}

func readOutput(path string) ([]domain.Segment, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read whisperx output: %w", err)
	}
	var out whisperxOutput
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("failed to parse whisperx output: %w", err)
	}
	return out.Segments, nil
}

// Close releases the Docker client.
func (e *Engine) Close() error {
	return e.cli.Close()
}
