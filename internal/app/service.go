package app

import (
	"time"

	"modlet-tools/internal/adapters"
	"modlet-tools/internal/ports"
)

type Service struct {
	Modlets    ports.ModletSourcePort
	GameConfig ports.GameConfigPort
	NewOutput  func(dir string) ports.OutputPort
	NewReport  func(yamlOutput bool) ports.ReportSinkPort
	Clock      func() time.Time
}

func NewService() Service {
	return Service{
		Modlets:    adapters.NewModletSourceAdapter(),
		GameConfig: adapters.NewGameConfigAdapter(),
		NewOutput: func(dir string) ports.OutputPort {
			return adapters.NewOutputFileAdapter(dir)
		},
		NewReport: func(yamlOutput bool) ports.ReportSinkPort {
			return adapters.NewReportConsoleAdapter(yamlOutput)
		},
		Clock: time.Now,
	}
}
