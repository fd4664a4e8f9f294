package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"monitorcontrol/internal/core/presence"
	"monitorcontrol/internal/logging"
	"monitorcontrol/internal/platform"
	"monitorcontrol/internal/storage"
	"monitorcontrol/internal/ui/tray"
	"monitorcontrol/resources"

	"fyne.io/fyne/v2/app"
)

const appName = "MonitorControl"

func main() {
	settings, settingsErr := storage.LoadSettings(appName)

	logger, err := logging.New(logging.Options{Debug: settings.Debug, File: settings.LogFile})
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logging: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = logger.Sync()
	}()
	if settingsErr != nil {
		logger.Warnw("using default settings", "error", settingsErr)
	}

	guard, err := platform.AcquireSingleInstance(appName)
	if err != nil {
		if errors.Is(err, platform.ErrAlreadyRunning) {
			logger.Infow("another instance is running", "error", err)
			return
		}
		logger.Fatalw("single instance", "error", err)
	}
	defer func() {
		_ = guard.Release()
	}()

	presentIcon, err := resources.TrayIcon(resources.PresentIcon)
	if err != nil {
		logger.Fatalw("load icon", "error", err)
	}
	awayIcon, err := resources.TrayIcon(resources.AwayIcon)
	if err != nil {
		logger.Fatalw("load icon", "error", err)
	}
	logger.Debugw("tray icons decoded",
		"present", presentIcon.Name, "away", awayIcon.Name,
		"width", presentIcon.Width, "height", presentIcon.Height)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	fyneApp := app.NewWithID("com.monitorcontrol.app")
	fyneApp.SetIcon(presentIcon.Resource)

	loop := presence.NewLoop(logger)
	shell, err := tray.New(fyneApp, appName, loop.Send, logger)
	if err != nil {
		logger.Fatalw("system tray", "error", err)
	}

	machine := presence.NewMachine(
		presence.Config{Tooltip: settings.Tooltip},
		presence.Icons{Present: presentIcon, Away: awayIcon},
		platform.NewPowerController(settings.CommandTimeout),
		shell,
		logger,
	)
	machine.Baseline(ctx)

	// The tray must be registered before Run; Init only attaches producers.
	if err := shell.Prepare(machine.TrayOptions()); err != nil {
		logger.Fatalw("system tray", "error", err)
	}
	shell.Start()
	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		if err := loop.Run(ctx, machine); err != nil {
			logger.Fatalw("event loop aborted", "error", err)
		}
	}()

	fyneApp.Run()

	shell.Close()
	cancel()
	<-stopped
	machine.Shutdown(context.Background())
}
