package main

import (
	"class-seat-monitor/internal/config"
	"class-seat-monitor/internal/logger"
	"class-seat-monitor/internal/models"
	"class-seat-monitor/internal/monitor"
	"class-seat-monitor/internal/notifier"
	"class-seat-monitor/internal/scheduler"
	"class-seat-monitor/internal/status"
	"context"
	"fmt"
	stdlog "log"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/data/binding"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
)

// maxViewLines bounds the activity and log views.
const maxViewLines = 500

// shutdownTimeout bounds the wait for the current check and the notification
// backlog when the window is closed.
const shutdownTimeout = 5 * time.Second

type GUI struct {
	app        fyne.App
	window     fyne.Window
	fs         afero.Fs
	config     *config.Config
	configPath string
	log        zerolog.Logger

	form *settingsForm

	statusLabel *widget.Label
	activity    binding.StringList
	logLines    binding.StringList

	isMonitoring binding.Bool
	status       *status.Log

	// busy is set while a start is in flight; the start goroutine holds mu.
	busy    atomic.Bool
	closing atomic.Bool

	mu      sync.Mutex
	monitor *monitor.Monitor
}

func main() {
	gui := &GUI{
		fs:           afero.NewOsFs(),
		activity:     binding.NewStringList(),
		logLines:     binding.NewStringList(),
		isMonitoring: binding.NewBool(),
	}

	gui.configPath = config.GetConfigPath(gui.fs)
	cfg, err := config.LoadOrDefault(gui.fs, gui.configPath)
	if err != nil {
		stdlog.Printf("config %s unusable, starting from defaults: %v", gui.configPath, err)
		cfg = config.Default()
	}
	gui.config = cfg

	gui.app = app.NewWithID("edu.msoe.class-seat-monitor")
	gui.app.Settings().SetTheme(newAppTheme())

	gui.log, err = logger.New(cfg.Log, viewWriter{lines: gui.logLines})
	if err != nil {
		gui.log, _ = logger.New(config.Default().Log, viewWriter{lines: gui.logLines})
	}
	gui.log.Info().Str("config", gui.configPath).Msg("Configuration loaded")

	gui.status = status.NewLog(cfg.Status.MaxEntries)
	gui.status.Subscribe(func(e models.StatusEntry) {
		fyne.Do(func() { appendBounded(gui.activity, e.String()) })
	})

	gui.window = gui.app.NewWindow(monitor.AppName)
	gui.window.Resize(fyne.NewSize(820, 640))
	gui.window.SetContent(gui.buildUI())
	gui.form.load(cfg)

	gui.window.SetCloseIntercept(gui.shutdown)

	gui.window.ShowAndRun()
}

func (g *GUI) buildUI() fyne.CanvasObject {
	g.form = newSettingsForm()

	return container.NewAppTabs(
		container.NewTabItem("Monitor", g.buildMonitorTab()),
		container.NewTabItem("Settings", g.buildSettingsTab()),
		container.NewTabItem("Log", g.buildLogTab()),
	)
}

func (g *GUI) buildMonitorTab() fyne.CanvasObject {
	g.statusLabel = widget.NewLabel("Idle")
	g.statusLabel.TextStyle.Bold = true

	startBtn := widget.NewButton("Start", g.startMonitoring)
	startBtn.Importance = widget.HighImportance

	stopBtn := widget.NewButton("Stop", g.stopMonitoring)
	stopBtn.Importance = widget.DangerImportance
	stopBtn.Disable()

	testBtn := widget.NewButton("Test notification", g.testNotification)

	g.isMonitoring.AddListener(binding.NewDataListener(func() {
		monitoring, _ := g.isMonitoring.Get()
		if monitoring {
			startBtn.Disable()
			stopBtn.Enable()
			g.statusLabel.SetText("Monitoring")
		} else {
			startBtn.Enable()
			stopBtn.Disable()
			g.statusLabel.SetText("Idle")
		}
	}))

	statusCard := widget.NewCard("Status", "",
		container.NewVBox(
			g.statusLabel,
			widget.NewSeparator(),
			container.NewGridWithColumns(3, startBtn, stopBtn, testBtn),
		),
	)

	clearBtn := widget.NewButton("Clear", func() {
		g.status.Clear()
		g.activity.Set(nil)
	})

	activityCard := widget.NewCard("Recent checks", "",
		container.NewBorder(nil, clearBtn, nil, nil, newLineList(g.activity)),
	)

	return container.NewBorder(statusCard, nil, nil, nil, activityCard)
}

func (g *GUI) buildSettingsTab() fyne.CanvasObject {
	saveBtn := widget.NewButton("Save settings", func() {
		if err := g.saveConfig(); err != nil {
			dialog.ShowError(err, g.window)
			return
		}
		dialog.ShowInformation("Saved", "Settings were saved to "+g.configPath, g.window)
	})
	saveBtn.Importance = widget.HighImportance

	return container.NewVScroll(container.NewVBox(
		g.form.monitorCard(),
		g.form.notifyCard(),
		container.NewCenter(saveBtn),
	))
}

func (g *GUI) buildLogTab() fyne.CanvasObject {
	clearBtn := widget.NewButton("Clear log", func() {
		g.logLines.Set(nil)
	})
	return container.NewBorder(nil, clearBtn, nil, nil, newLineList(g.logLines))
}

// saveConfig copies the form into the configuration and writes it out.
func (g *GUI) saveConfig() error {
	cfg := *g.config
	if err := g.form.apply(&cfg); err != nil {
		return err
	}
	if err := config.Save(g.fs, g.configPath, &cfg); err != nil {
		return err
	}
	*g.config = cfg
	g.log.Info().Str("config", g.configPath).Msg("Settings saved")
	return nil
}

func (g *GUI) startMonitoring() {
	if !g.busy.CompareAndSwap(false, true) {
		return
	}
	if g.running() {
		g.busy.Store(false)
		return
	}
	if err := g.saveConfig(); err != nil {
		g.busy.Store(false)
		dialog.ShowError(err, g.window)
		return
	}

	cfg := *g.config
	runCfg := scheduler.NewConfig(cfg.Courses, cfg.Monitor.IntervalDuration())
	if err := runCfg.Validate(); err != nil {
		g.busy.Store(false)
		dialog.ShowError(err, g.window)
		return
	}

	// toasts go through fyne so they carry the app identity
	extra := []notifier.Deliverer{}
	if cfg.Notify.Desktop {
		extra = append(extra, notifier.DelivererFunc(g.sendNotification))
		cfg.Notify.Desktop = false
	}

	g.statusLabel.SetText("Starting browser...")

	go func() {
		defer g.busy.Store(false)

		// held until the run is up so a Stop pressed meanwhile waits for it
		g.mu.Lock()
		m, err := monitor.New(context.Background(), &cfg, g.status, g.log, extra...)
		if err == nil {
			if err = m.Scheduler.Start(runCfg); err != nil {
				m.Close()
			} else {
				g.monitor = m
			}
		}
		g.mu.Unlock()

		running := g.running()
		fyne.Do(func() {
			g.isMonitoring.Set(running)
			if err != nil {
				g.statusLabel.SetText("Idle")
				dialog.ShowError(err, g.window)
				return
			}
			g.statusLabel.SetText(fmt.Sprintf("Monitoring %s every %ds",
				models.JoinCourses(runCfg.Courses), cfg.Monitor.Interval))
		})
		if err != nil {
			g.log.Error().Err(err).Msg("Failed to start monitoring")
		}
	}()
}

// stopMonitoring waits for the in-flight probe off the UI goroutine.
func (g *GUI) stopMonitoring() {
	g.statusLabel.SetText("Stopping after the current check...")
	go func() {
		g.closeMonitor(context.Background())
		running := g.running()
		fyne.Do(func() { g.isMonitoring.Set(running) })
	}()
}

// running reports whether the current monitor's scheduler is running. The
// isMonitoring binding is only ever set from this.
func (g *GUI) running() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.monitor != nil && g.monitor.Scheduler.Running()
}

func (g *GUI) closeMonitor(ctx context.Context) {
	g.mu.Lock()
	m := g.monitor
	g.monitor = nil
	g.mu.Unlock()

	if m == nil {
		return
	}
	if err := m.Shutdown(ctx); err != nil {
		g.log.Warn().Err(err).Msg("Shutdown incomplete")
	}
}

// shutdown hides the window at once and quits after the monitor is closed,
// waiting at most shutdownTimeout.
func (g *GUI) shutdown() {
	if !g.closing.CompareAndSwap(false, true) {
		return
	}
	g.window.Hide()

	go func() {
		if g.running() {
			g.log.Info().Msg("Window closed while monitoring, stopping")
		}
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		g.closeMonitor(ctx)
		fyne.Do(g.app.Quit)
	}()
}

func (g *GUI) sendNotification(title, body string) error {
	g.app.SendNotification(fyne.NewNotification(title, body))
	return nil
}

func (g *GUI) testNotification() {
	cfg := *g.config
	if err := g.form.apply(&cfg); err != nil {
		dialog.ShowError(err, g.window)
		return
	}
	extra := []notifier.Deliverer{}
	if cfg.Notify.Desktop {
		extra = append(extra, notifier.DelivererFunc(g.sendNotification))
		cfg.Notify.Desktop = false
	}
	d := monitor.Deliverers(&cfg, extra...)
	if len(d) == 0 {
		dialog.ShowInformation("Test notification", "No notification channel is enabled.", g.window)
		return
	}

	go func() {
		err := d.TestConnection()
		fyne.Do(func() {
			if err != nil {
				dialog.ShowError(err, g.window)
				return
			}
			dialog.ShowInformation("Test notification", "Sent.", g.window)
		})
	}()
}

func newLineList(data binding.StringList) *widget.List {
	return widget.NewListWithData(data,
		func() fyne.CanvasObject { return widget.NewLabel("") },
		func(item binding.DataItem, obj fyne.CanvasObject) {
			obj.(*widget.Label).Bind(item.(binding.String))
		},
	)
}

func appendBounded(data binding.StringList, line string) {
	data.Append(line)
	if data.Length() > maxViewLines {
		lines, _ := data.Get()
		data.Set(lines[len(lines)-maxViewLines:])
	}
}

// viewWriter feeds log records into a list view.
type viewWriter struct {
	lines binding.StringList
}

func (w viewWriter) Write(p []byte) (int, error) {
	line := strings.TrimRight(string(p), "\n")
	fyne.Do(func() { appendBounded(w.lines, line) })
	return len(p), nil
}
