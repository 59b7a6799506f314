package config

import (
	"strings"
	"sync"
)

const (
	// PipelineModeFull runs outcome prediction and gap fixing after the mock evaluation.
	PipelineModeFull = "full"
	// PipelineModeMock stops after the mock evaluation.
	PipelineModeMock = "mock"
)

type PipelineConfig struct {
	Mode             string
	QuestionMinCount int
}

var (
	pipelineConfig *PipelineConfig
	pipelineOnce   sync.Once
)

func LoadPipelineConfig() *PipelineConfig {
	pipelineOnce.Do(func() {
		cfg := Viper()
		mode := strings.ToLower(strings.TrimSpace(cfg.GetString("PIPELINE_MODE")))
		if mode != PipelineModeMock {
			mode = PipelineModeFull
		}
		minCount := cfg.GetInt("QUESTION_MIN_COUNT")
		if minCount <= 0 {
			minCount = 2
		}
		pipelineConfig = &PipelineConfig{
			Mode:             mode,
			QuestionMinCount: minCount,
		}
	})
	return pipelineConfig
}

func (c *PipelineConfig) FullEvaluation() bool {
	return c.Mode == PipelineModeFull
}
