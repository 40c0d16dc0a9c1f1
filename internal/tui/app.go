package tui

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/muurk/tapcalc/internal/discovery"
)

// RunCalculator runs the interactive calculator until the user quits and
// returns the final model.
func RunCalculator(opts Options) (CalculatorModel, error) {
	p := tea.NewProgram(NewCalculatorModel(opts))
	final, err := p.Run()
	if err != nil {
		return CalculatorModel{}, fmt.Errorf("calculator error: %w", err)
	}
	m, _ := final.(CalculatorModel)
	return m, nil
}

// RunDiscovery shows the discovery screen and returns the chosen instance,
// or nil when the user quits without choosing.
func RunDiscovery(timeout time.Duration) (*discovery.Instance, error) {
	p := tea.NewProgram(NewDiscoveryModel(nil, timeout))
	final, err := p.Run()
	if err != nil {
		return nil, fmt.Errorf("discovery error: %w", err)
	}
	m, ok := final.(DiscoveryModel)
	if !ok {
		return nil, nil
	}
	return m.Selected, nil
}
