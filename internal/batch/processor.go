package batch

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"skinpack-studio/internal/postprocess"
	"skinpack-studio/internal/preview"
)

// Config holds the shared settings for a preview run.
type Config struct {
	OutputDir  string
	RenderSize int
	// Supersample is the render-then-downscale factor; zero uses the
	// preview default.
	Supersample int
	Yaw         float64 // radians; a slight turn shows front and side
	Workers     int
	Progress    io.Writer // nil disables progress lines

	// FillRatio, when positive, crops each preview to the model and
	// rescales it to fill that share of the frame.
	FillRatio float64
}

// Job is one skin to render.
type Job struct {
	Name     string
	Stem     string // output file stem
	Geometry string
	Data     []byte
}

// Result holds the outcome of rendering one job.
type Result struct {
	Name    string
	Stem    string
	Image   string // path relative to OutputDir
	Success bool
	Error   string
}

// Run renders all jobs using a worker pool. Results keep job order.
func Run(cfg Config, jobs []Job) []Result {
	total := len(jobs)
	results := make([]Result, total)
	var processed atomic.Int64
	workers := max(1, cfg.Workers)

	start := time.Now()

	// Progress reporter
	done := make(chan struct{})
	go func() {
		if cfg.Progress == nil {
			return
		}
		ticker := time.NewTicker(2 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				p := processed.Load()
				if p > 0 {
					rate := float64(p) / time.Since(start).Seconds()
					fmt.Fprintf(cfg.Progress, "  [%d/%d] %.1f previews/sec\n", p, total, rate)
				}
			}
		}
	}()

	// Worker pool
	jobChan := make(chan int, workers*2)
	var wg sync.WaitGroup

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobChan {
				results[idx] = processJob(cfg, jobs[idx])
				processed.Add(1)
			}
		}()
	}

	for i := range jobs {
		jobChan <- i
	}
	close(jobChan)

	wg.Wait()
	close(done)

	return results
}

func processJob(cfg Config, job Job) Result {
	res := Result{Name: job.Name, Stem: job.Stem}

	img, err := preview.Still(nil, job.Data, job.Geometry, cfg.Yaw, cfg.RenderSize, cfg.Supersample)
	if err != nil {
		res.Error = err.Error()
		return res
	}
	if cfg.FillRatio > 0 {
		img = postprocess.CropAndCenter(img, cfg.RenderSize, cfg.RenderSize, cfg.FillRatio)
	}
	var buf bytes.Buffer
	if err := preview.EncodeWebP(&buf, img); err != nil {
		res.Error = err.Error()
		return res
	}

	rel := job.Stem + ".webp"
	outPath := filepath.Join(cfg.OutputDir, rel)
	if err := os.MkdirAll(filepath.Dir(outPath), 0755); err != nil {
		res.Error = err.Error()
		return res
	}
	if err := os.WriteFile(outPath, buf.Bytes(), 0644); err != nil {
		res.Error = err.Error()
		return res
	}

	res.Image = rel
	res.Success = true
	return res
}
