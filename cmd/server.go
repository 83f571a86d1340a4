package cmd

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"marketstate/core"
	"marketstate/handler"

	"github.com/drone/signal"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "run market state api server",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := signalContext(cmd.Context())
		defer cancel()

		s := provideStores()
		chain := provideChain(ctx)
		gate := provideGate(s, chain)

		port, _ := cmd.Flags().GetInt("port")
		return serve(ctx, port, provideServer(s, gate, chain))
	},
}

func init() {
	rootCmd.AddCommand(serverCmd)
	serverCmd.Flags().IntP("port", "p", 9000, "server port")
}

func provideServer(s *stores, gate core.IUpdateGate, blocks core.ILogSource) handler.Server {
	return handler.New(rootCmd.Version, s.markets, s.accounts, s.positions, s.transactions, s.checkpoints, gate, blocks)
}

// signalContext ctx cancelled on SIGINT or SIGTERM
func signalContext(ctx context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(ctx)
	return signal.WithContextFunc(ctx, cancel), cancel
}

// serve until ctx is done, then shut down gracefully
func serve(ctx context.Context, port int, srv handler.Server) error {
	addr := fmt.Sprintf(":%d", port)
	server := &http.Server{
		Addr:    addr,
		Handler: srv.Handler(),
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		<-ctx.Done()

		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			logrus.WithError(err).Error("graceful shutdown server failed")
		}
	}()

	logrus.Infoln("serve at", addr)
	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		logrus.WithError(err).Error("server aborted")
		return err
	}

	<-done
	return nil
}
