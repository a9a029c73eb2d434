// Package renewal keeps a TLS server pair running and periodically renews its
// certificate with an external command.
//
// Renewal with the HTTP-01 challenge needs port 80 free, so every cycle gives
// up the ports, runs the command, and binds a fresh pair:
//
//	Idle -> Releasing -> Renewing -> Restarting -> Idle
//
// The restart step always runs, even when releasing or renewing failed, so the
// host stays reachable. If the restart itself fails the process cannot serve
// anything and terminates through the exit function (os.Exit(1) by default).
//
// A failed renewal command with a successful restart moves the supervisor to
// StateHalted: the pair keeps serving but no further cycle is scheduled, and an
// ERROR is logged. WithResumeOnFailure keeps the schedule running instead.
//
// # Basic Usage
//
//	factory := func() (renewal.ServerPair, error) {
//		return server.NewPair(serverCfg, handler, server.WithLogger(log))
//	}
//
//	sup, err := renewal.NewFromConfig(renewalCfg, factory, renewal.WithLogger(log))
//	if err != nil {
//		return err
//	}
//
//	// Blocks until ctx is cancelled; the pair is stopped before it returns.
//	if err := sup.Run(ctx); err != nil {
//		return err
//	}
//
// # Command Output
//
// CommandRunner captures stdout and stderr in full. The supervisor logs every
// line with a "stream" attribute, and every record of a cycle carries the same
// "cycle_id".
//
// # Testing
//
// Runner and PairFactory are small interfaces; tests substitute fakes and use
// WithExitFunc to observe the fatal path without terminating the test binary.
package renewal
