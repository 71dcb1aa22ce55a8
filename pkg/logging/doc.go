// Package logging provides the Logger interface every component of the
// module logs through, and adapters for it.
//
// Components never reach for process-wide logging state: the caller builds a
// Logger and hands it over, so tests can capture records deterministically.
//
//	logger, closer, err := logging.New(&logging.Config{Level: logging.LevelInfo, File: "logs/running_logs.log"})
//	if err != nil {
//		return err
//	}
//	defer closer.Close()
//	toolkit := common.New(common.WithLogger(logger))
package logging
