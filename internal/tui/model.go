// Package tui is the terminal rendition of the market card, served over SSH.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"market-card/internal/analysis"
	"market-card/internal/domain"
	"market-card/internal/render"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const fetchTimeout = 45 * time.Second

type SnapshotSource interface {
	Snapshot(ctx context.Context) (domain.MarketSnapshot, error)
}

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#E6E9F0"))
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#8A93A6"))
	upStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#16C784"))
	downStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#EA3943"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#EA3943")).Bold(true)
	panelStyle   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("#2A3347")).Padding(0, 1)
	symbolStyle  = lipgloss.NewStyle().Bold(true).Width(6)
	nameStyle    = mutedStyle.Width(14)
	priceStyle   = lipgloss.NewStyle().Width(14).Align(lipgloss.Right)
	changeStyle  = lipgloss.NewStyle().Width(10).Align(lipgloss.Right)
	sectionTitle = mutedStyle.Bold(true)
)

type snapshotMsg struct {
	snap domain.MarketSnapshot
	err  error
}

// Model shows the latest snapshot; r refreshes, q quits.
type Model struct {
	source  SnapshotSource
	spinner spinner.Model
	snap    domain.MarketSnapshot
	loaded  bool
	loading bool
	err     error
	width   int
	height  int
}

func NewModel(source SnapshotSource) *Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = mutedStyle
	return &Model{source: source, spinner: sp, loading: true}
}

func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.fetch())
}

func (m *Model) fetch() tea.Cmd {
	source := m.source
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
		defer cancel()
		snap, err := source.Snapshot(ctx)
		return snapshotMsg{snap: snap, err: err}
	}
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "r":
			if m.loading {
				return m, nil
			}
			m.loading = true
			return m, tea.Batch(m.spinner.Tick, m.fetch())
		}
	case tea.WindowSizeMsg:
		m.SetSize(msg.Width, msg.Height)
	case snapshotMsg:
		m.loading = false
		m.err = msg.err
		if msg.err == nil {
			m.snap = msg.snap
			m.loaded = true
		}
	case spinner.TickMsg:
		if !m.loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *Model) View() string {
	var b strings.Builder

	header := titleStyle.Render("Market Overview")
	if m.loaded {
		header += "  " + mutedStyle.Render(m.snap.Date)
	}
	if m.loading {
		header += "  " + m.spinner.View()
	}
	b.WriteString(header + "\n\n")

	if m.err != nil {
		b.WriteString(errorStyle.Render("Error: "+m.err.Error()) + "\n\n")
	}
	if m.loaded {
		b.WriteString(m.overview() + "\n")
		b.WriteString(m.coinTable() + "\n")
		if m.snap.HasAnalysis() {
			b.WriteString(m.analysisPanel() + "\n")
		}
	} else if m.err == nil {
		b.WriteString(mutedStyle.Render("Fetching market data...") + "\n\n")
	}

	b.WriteString(mutedStyle.Render("r refresh • q quit"))
	return b.String()
}

func (m *Model) overview() string {
	s := m.snap
	gauges := fmt.Sprintf("%s %s  %s\n%s %s  %s",
		sectionTitle.Render("Fear & Greed"), titleStyle.Render(fmt.Sprintf("%d/100", s.FearGreed)), render.FearGreedLabel(s.FearGreed),
		sectionTitle.Render("Alt Season  "), titleStyle.Render(fmt.Sprintf("%d/100", s.AltSeason)), render.AltSeasonLabel(s.AltSeason),
	)
	totals := fmt.Sprintf("%s %s %s\n%s %s %s\n%s BTC %s  ETH %s",
		sectionTitle.Render("Market Cap"), render.FormatMarketCap(s.TotalMarketCap), trendStyle(s.MarketCapChangePct).Render(render.Percent(s.MarketCapChangePct, 1)),
		sectionTitle.Render("Volume 24h"), render.FormatVolume(s.Volume24h), trendStyle(s.VolumeChangePct).Render(render.Percent(s.VolumeChangePct, 0)),
		sectionTitle.Render("Dominance "), render.FormatDominance(s.BTCDom), render.FormatDominance(s.ETHDom),
	)
	return lipgloss.JoinHorizontal(lipgloss.Top, panelStyle.Render(gauges), " ", panelStyle.Render(totals))
}

func (m *Model) coinTable() string {
	rows := make([]string, 0, len(m.snap.Coins))
	for _, c := range m.snap.CoinList() {
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top,
			symbolStyle.Render(c.Symbol),
			nameStyle.Render(c.Name),
			priceStyle.Render("$"+analysis.FormatPrice(c.Price)),
			changeStyle.Inherit(trendStyle(c.ChangePct)).Render(render.Percent(c.ChangePct, 2)),
		))
	}
	return panelStyle.Render(strings.Join(rows, "\n"))
}

func (m *Model) analysisPanel() string {
	width := 60
	if m.width > 10 {
		width = m.width - 6
	}
	body := lipgloss.NewStyle().Width(width).Render(m.snap.AIAnalysis)
	return panelStyle.Render(sectionTitle.Render("AI Analysis") + "\n" + body)
}

func trendStyle(v float64) lipgloss.Style {
	switch {
	case v > 0:
		return upStyle
	case v < 0:
		return downStyle
	}
	return mutedStyle
}
