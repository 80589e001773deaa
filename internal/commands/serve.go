package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"github.com/sirupsen/logrus"

	"taskpile/internal/config"
	"taskpile/internal/exitcode"
	"taskpile/internal/service"
	"taskpile/internal/webui"
)

func init() {
	Register(&ServeCmd{})
}

// ServeCmd implements the serve command: host the browser form.
type ServeCmd struct {
	host string
	port int
}

func (c *ServeCmd) Name() string      { return "serve" }
func (c *ServeCmd) Aliases() []string { return nil }
func (c *ServeCmd) Synopsis() string  { return "Serve the bulk create web form" }
func (c *ServeCmd) Usage() string {
	return "taskpile serve [common flags] [--host <host>] [--port <port>]"
}
func (c *ServeCmd) NeedsToken() bool { return true }

func (c *ServeCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.host, "host", "", "")
	fs.IntVar(&c.port, "port", 0, "")
}

func (c *ServeCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	if len(args) > 0 {
		fmt.Fprintln(errOut, "error: serve takes no arguments")
		return exitcode.UserError
	}

	log := logrus.New()
	log.SetOutput(errOut)
	if cfg.Debug {
		log.SetLevel(logrus.DebugLevel)
	}

	srvCfg := webui.DefaultServerConfig()
	srvCfg.Debug = cfg.Debug
	if c.host != "" {
		srvCfg.Host = c.host
	}
	if c.port != 0 {
		srvCfg.Port = c.port
	}

	if !cfg.Quiet {
		fmt.Fprintf(out, "Serving on http://%s:%d\n", srvCfg.Host, srvCfg.Port)
	}

	server := webui.NewServer(svc, cfg, srvCfg, log)
	if err := server.Start(ctx); err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.BackendError
	}
	return exitcode.Success
}
