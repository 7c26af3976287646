/*
This is an example of application that will use the
engine package to test things out
*/
package main

import (
	"context"
	"errors"
	"flag"
	"io/fs"
	"os"
	"os/signal"
	"syscall"

	"github.com/spaghettifunk/anima2d/engine"
	"github.com/spaghettifunk/anima2d/engine/core"
	"github.com/spaghettifunk/anima2d/engine/platform"
	"github.com/spaghettifunk/anima2d/engine/renderer/opengl"
	"github.com/spaghettifunk/anima2d/testbed"
)

func main() {
	configPath := flag.String("config", "anima.toml", "path to the application config")
	flag.Parse()

	config, err := engine.LoadApplicationConfig(*configPath)
	if errors.Is(err, fs.ErrNotExist) {
		core.LogWarn("%s not found, using the default configuration", *configPath)
		config, err = engine.DefaultApplicationConfig(), nil
	}
	if err != nil {
		core.LogFatal("failed to load configuration: %s", err)
	}

	p := platform.New()
	if err := p.Startup(config.Name, config.StartPosX, config.StartPosY, config.StartWidth, config.StartHeight, config.VSync); err != nil {
		core.LogFatal(err.Error())
	}
	defer p.Shutdown()

	gl, err := opengl.New()
	if err != nil {
		core.LogFatal(err.Error())
	}
	defer gl.Shutdown()

	e, err := engine.New(config, gl, p)
	if err != nil {
		core.LogFatal(err.Error())
	}
	p.Attach(e.Input(), e.Events())
	if err := e.Init(); err != nil {
		core.LogFatal(err.Error())
	}
	defer e.CleanUp()

	// signal channel to capture system calls
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM, syscall.SIGQUIT)
	defer stop()

	if err := e.Start(ctx, testbed.NewTestGame(e, config.AssetRoot)); err != nil {
		core.LogError("failed to start the testbed: %s", err)
		return
	}

	// returns on window close, escape or a signal
	p.Run(ctx)
}
