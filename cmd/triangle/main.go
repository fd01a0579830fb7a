// Command triangle opens a window and draws a single triangle with Vulkan
// until the window is closed.
package main

import (
	"fmt"
	"os"
	"runtime"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/vkngwrapper/triangle/internal/config"
	"github.com/vkngwrapper/triangle/internal/renderer"
	"github.com/vkngwrapper/triangle/internal/window"
)

func init() {
	// SDL and the Vulkan surface must stay on the main thread.
	runtime.LockOSThread()
}

func run(cfg config.Config, logger log.FieldLogger) (err error) {
	shaders, err := renderer.LoadShaders(cfg.Shaders)
	if err != nil {
		return err
	}

	win, err := window.Open(cfg.Window)
	if err != nil {
		return errors.Mark(err, renderer.ErrEnvironment)
	}
	defer win.Destroy()

	r, err := renderer.New(cfg, win, shaders, logger)
	if err != nil {
		return err
	}
	defer func() {
		err = errors.CombineErrors(err, r.Close())
	}()

	return r.Run()
}

func main() {
	cfg := config.Default()
	if cfg.EnableValidation {
		log.SetLevel(log.DebugLevel)
	}

	logger := log.WithField("run", uuid.New().String())
	logger.WithField("validation", cfg.EnableValidation).Info("Starting")

	err := run(cfg, logger)
	if err != nil {
		logger.WithField("category", renderer.Category(err)).Errorf("%+v", err)
		fmt.Println(err)
		for _, hint := range errors.GetAllHints(err) {
			fmt.Println("hint:", hint)
		}
		os.Exit(1)
	}
}
