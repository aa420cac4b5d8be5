// Copyright 2021-2022
// SPDX-License-Identifier: Apache-2.0
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package common

import (
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/rs/zerolog/pkgerrors"
	"github.com/spf13/viper"
)

var logFile *os.File

// SetupLogging configures the global zerolog logger from the `log.*`
// configuration keys. A log file that cannot be opened leaves the logger
// writing to stderr and returns the error.
func SetupLogging() error {
	level := strings.ToLower(viper.GetString("log.level"))

	switch level {
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	case "fatal":
		zerolog.SetGlobalLevel(zerolog.FatalLevel)
	case "info":
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	case "panic":
		zerolog.SetGlobalLevel(zerolog.PanicLevel)
	case "trace":
		zerolog.SetGlobalLevel(zerolog.TraceLevel)
	case "warning", "warn":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	}

	pretty := viper.GetBool("log.pretty")
	output := viper.GetString("log.output")

	var err error
	switch output {
	case "stdout":
		log.Logger = log.Output(writer(os.Stdout, pretty))
	case "stderr", "":
		log.Logger = log.Output(writer(os.Stderr, pretty))
	default:
		var fh *os.File
		fh, err = os.OpenFile(output, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0600)
		if err != nil {
			log.Logger = log.Output(writer(os.Stderr, pretty))
			log.Error().Err(err).Str("Output", output).Msg("could not open log file; logging to stderr")
		} else {
			if logFile != nil {
				logFile.Close()
			}
			logFile = fh
			log.Logger = log.Output(writer(fh, pretty))
		}
	}

	if viper.GetBool("log.report_caller") {
		log.Logger = log.With().Caller().Logger()
	}

	zerolog.ErrorStackMarshaler = pkgerrors.MarshalStack
	log.Debug().Str("Level", zerolog.GlobalLevel().String()).Msg("logging configured")
	return err
}

func writer(fh *os.File, pretty bool) zerolog.LevelWriter {
	if pretty {
		return zerolog.MultiLevelWriter(zerolog.ConsoleWriter{Out: fh})
	}
	return zerolog.MultiLevelWriter(fh)
}
