// internal/platform/ui/pterm_presenter.go
package ui

import (
	"fmt"
	"strings"
	"sync"

	"github.com/pterm/pterm"
)

// PTermPresenter implementa Presenter usando la biblioteca pterm
// para renderizar la barra de progreso, colores y símbolos en la terminal.
type PTermPresenter struct {
	mu sync.Mutex

	bar  *pterm.ProgressbarPrinter
	info BatchInfo

	// linkLines imprime una línea por enlace; se desactiva cuando el result
	// handler ya escribe en la consola.
	linkLines bool
}

// NewPTermPresenter crea una nueva instancia del presenter con pterm
func NewPTermPresenter() *PTermPresenter {
	return &PTermPresenter{linkLines: true}
}

// WithoutLinkLines deja solo la barra de progreso y el resumen final.
func (p *PTermPresenter) WithoutLinkLines() *PTermPresenter {
	p.linkLines = false
	return p
}

// Start muestra el header del batch e inicia la barra de progreso
func (p *PTermPresenter) Start(info BatchInfo) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.info = info

	pterm.DefaultHeader.
		WithBackgroundStyle(pterm.NewStyle(pterm.BgCyan)).
		WithTextStyle(pterm.NewStyle(pterm.FgBlack)).
		Println("dlcheck - Download Link Verification")

	pterm.Println()

	infoPanel := pterm.DefaultBox.
		WithTitle("Batch").
		WithTitleTopCenter().
		WithRightPadding(4).
		WithLeftPadding(4).
		WithBoxStyle(pterm.NewStyle(pterm.FgCyan))

	content := fmt.Sprintf("%s Input: %s\n", IconInput, pterm.Cyan(info.Input))
	content += fmt.Sprintf("%s Results: %s\n", IconHandler, pterm.Cyan(info.Handler))
	content += fmt.Sprintf("%s Links: %d\n", IconLinks, info.Links)
	content += fmt.Sprintf("%s Workers: %d  Retries: %d\n", IconWorkers, info.Workers, info.Retries)
	content += fmt.Sprintf("%s Timeout: %s\n", IconTime, formatDuration(info.Timeout))
	content += fmt.Sprintf("%s Proxies: %d\n", IconProxy, info.Proxies)
	content += fmt.Sprintf("%s Providers: %s", IconProvider, strings.Join(info.Providers, ", "))

	infoPanel.Println(content)
	pterm.Println()

	if info.Links > 0 {
		p.bar, _ = pterm.DefaultProgressbar.
			WithTotal(info.Links).
			WithTitle("Verifying").
			WithRemoveWhenDone(true).
			Start()
	}
}

// LinkDone avanza la barra y muestra la línea del enlace
func (p *PTermPresenter) LinkDone(ev LinkEvent) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.bar != nil {
		defer p.bar.Increment()
	}
	if !p.linkLines {
		return
	}

	status := StatusFor(ev.Status)
	line := fmt.Sprintf("  %s %s", status.Symbol(), status.Style().Sprint(ev.Status))
	line += " " + StyleAccent.Sprint(ev.URL)
	if ev.Provider != "" {
		line += StyleSecondary.Sprintf(" [%s]", ev.Provider)
	}
	if ev.Redirects > 0 {
		line += StyleSecondary.Sprintf(" redirects=%d", ev.Redirects)
	}
	if ev.Tries > 1 {
		line += StyleSecondary.Sprintf(" tries=%d", ev.Tries)
	}
	line += StyleSecondary.Sprintf(" (%s)", formatDuration(ev.Duration))

	pterm.Println(line)
}

// Info muestra un mensaje informativo
func (p *PTermPresenter) Info(msg string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	pterm.Info.Println(msg)
}

// Warning muestra una advertencia
func (p *PTermPresenter) Warning(msg string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	pterm.Warning.Println(msg)
}

// Error muestra un error
func (p *PTermPresenter) Error(msg string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	pterm.Error.Println(msg)
}

// Finish finaliza la presentación con estadísticas finales
func (p *PTermPresenter) Finish(stats BatchStats) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.stopBar()

	pterm.Println()
	pterm.Println(pterm.LightBlue(SeparatorHeavy))
	pterm.Println()

	pterm.DefaultHeader.
		WithBackgroundStyle(pterm.NewStyle(pterm.BgGreen)).
		WithTextStyle(pterm.NewStyle(pterm.FgBlack)).
		Println("Run Completed")

	pterm.Println()

	statsPanel := pterm.DefaultBox.
		WithTitle("Statistics").
		WithTitleTopCenter().
		WithRightPadding(4).
		WithLeftPadding(4).
		WithBoxStyle(pterm.NewStyle(pterm.FgGreen))

	content := fmt.Sprintf("%s Total Duration: %s\n", IconTime, pterm.Green(formatDuration(stats.TotalDuration)))
	content += fmt.Sprintf("%s Links: %d\n", IconLinks, stats.Total)
	content += fmt.Sprintf("%s Live: %s\n", IconSuccess, StyleSuccess.Sprint(stats.Live))
	content += fmt.Sprintf("%s Dead: %s\n", IconError, StyleError.Sprint(stats.Dead))
	content += fmt.Sprintf("   Unsupported: %s\n", StyleSecondary.Sprint(stats.Unsupported))
	content += fmt.Sprintf("   Failed: %s", StyleWarning.Sprint(stats.Failed))
	if stats.Other > 0 {
		content += fmt.Sprintf("\n   Other: %d", stats.Other)
	}
	if stats.SinkErrors > 0 {
		content += fmt.Sprintf("\n%s Result handler errors: %s", IconError, StyleError.Sprint(stats.SinkErrors))
	}
	statsPanel.Println(content)

	if len(stats.UnsupportedHosts) > 0 {
		pterm.Println()
		pterm.DefaultSection.WithLevel(2).Println("Unsupported Services")

		tableData := pterm.TableData{{"Host", "Links"}}
		for _, host := range sortedHosts(stats.UnsupportedHosts) {
			tableData = append(tableData, []string{host, fmt.Sprintf("%d", stats.UnsupportedHosts[host])})
		}

		_ = pterm.DefaultTable.
			WithHasHeader().
			WithBoxed().
			WithData(tableData).
			Render()
	}

	pterm.Println()
}

// Close limpia recursos del presenter
func (p *PTermPresenter) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.stopBar()
	return nil
}

func (p *PTermPresenter) stopBar() {
	if p.bar != nil {
		_, _ = p.bar.Stop()
		p.bar = nil
	}
}
