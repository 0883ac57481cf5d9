/*
 * Copyright 2025 Comcast Cable Communications Management, LLC
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"html/template"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/traymetrics/traymetrics/buildinfo"
	"github.com/traymetrics/traymetrics/common"
	"github.com/traymetrics/traymetrics/config"
	"github.com/traymetrics/traymetrics/exporter"
	"github.com/traymetrics/traymetrics/http/handlers"
	"github.com/traymetrics/traymetrics/logger"
	"github.com/traymetrics/traymetrics/middleware/logging"
	"github.com/traymetrics/traymetrics/middleware/muxprom"
	tm_vault "github.com/traymetrics/traymetrics/vault"
	"go.uber.org/zap"

	"gopkg.in/alecthomas/kingpin.v2"
)

const (
	app = "traymetrics"
)

var (
	a                 = kingpin.New(app, "redfish PSU, fan and temperature exporter for GPU tray chassis")
	bmcIP             = a.Flag("bmc-ip", "BMC IP address or hostname").Required().Envar("BMC_IP").String()
	username          = a.Flag("user", "BMC username").Default("").Envar("BMC_USERNAME").String()
	password          = a.Flag("password", "BMC password").Default("").Envar("BMC_PASSWORD").String()
	bmcTimeout        = a.Flag("timeout", "BMC scrape timeout").Default("15s").Envar("BMC_TIMEOUT").Duration()
	bmcScheme         = a.Flag("scheme", "BMC scheme to use").Default("https").Envar("BMC_SCHEME").String()
	chassisID         = a.Flag("chassis", "chassis resource id the sensor and thermal endpoints live under").Default("Miramar_Sensor").Envar("BMC_CHASSIS_ID").String()
	logLevel          = a.Flag("log.level", "log level verbosity").PlaceHolder("[debug|info|warn|error]").Default("info").Envar("LOG_LEVEL").String()
	logMethod         = a.Flag("log.method", "alternative method for logging in addition to stdout").PlaceHolder("[file]").Default("").Envar("LOG_METHOD").String()
	logFilePath       = a.Flag("log.file-path", "directory path where log files are written if log-method is file").Default("/var/log/traymetrics").Envar("LOG_FILE_PATH").String()
	logFileMaxSize    = a.Flag("log.file-max-size", "max file size in megabytes if log-method is file").Default("256").Envar("LOG_FILE_MAX_SIZE").Int()
	logFileMaxBackups = a.Flag("log.file-max-backups", "max file backups before they are rotated if log-method is file").Default("1").Envar("LOG_FILE_MAX_BACKUPS").Int()
	logFileMaxAge     = a.Flag("log.file-max-age", "max file age in days before they are rotated if log-method is file").Default("1").Envar("LOG_FILE_MAX_AGE").Int()
	exporterPort      = a.Flag("port", "exporter port").Default("10023").Envar("EXPORTER_PORT").String()
	vaultAddr         = a.Flag("vault.addr", "Vault instance address to get BMC credentials from").Default("").Envar("VAULT_ADDRESS").String()
	vaultRoleId       = a.Flag("vault.role-id", "Vault Role ID for AppRole").Default("").Envar("VAULT_ROLE_ID").String()
	vaultSecretId     = a.Flag("vault.secret-id", "Vault Secret ID for AppRole").Default("").Envar("VAULT_SECRET_ID").String()
	vaultSecretProps  = a.Flag("vault.secret-properties",
		`YAML or JSON blob describing where the BMC credential pair lives, i.e.
  --vault.secret-properties="
    mountPath: "kv2"
    path: "path/to/secret"
    userField: "user"
    passwordField: "password"
  "`).Default("").Envar("VAULT_SECRET_PROPERTIES").String()

	log *zap.Logger

	vault *tm_vault.Vault
)

var wg = sync.WaitGroup{}

func main() {
	ctx := context.Background()
	doneRenew := make(chan bool, 1)
	tokenLifecycle := make(chan bool, 1)

	hostname, err := os.Hostname()
	if err != nil {
		hostname = ""
	}

	a.HelpFlag.Short('h')

	_, err = a.Parse(os.Args[1:])
	if err != nil {
		panic(fmt.Errorf("error parsing argument flags - %s", err.Error()))
	}

	// validate logFilePath exists and is a directory
	if *logMethod == "file" {
		fd, err := os.Stat(*logFilePath)
		if os.IsNotExist(err) {
			panic(err)
		}
		if !fd.IsDir() {
			panic(fmt.Errorf("%s is not a directory", *logFilePath))
		}
	}

	config.NewConfig(&config.Config{
		BMCScheme:  *bmcScheme,
		BMCTimeout: *bmcTimeout,
		ChassisID:  *chassisID,
		User:       *username,
		Pass:       *password,
	})

	logConfig := logger.LoggerConfig{
		LogLevel:  *logLevel,
		LogMethod: *logMethod,
		LogFile: logger.LogFile{
			Path:       *logFilePath,
			MaxSize:    *logFileMaxSize,
			MaxBackups: *logFileMaxBackups,
			MaxAge:     *logFileMaxAge,
		},
	}

	err = logger.Initialize(app, hostname, logConfig)
	if err != nil {
		panic(fmt.Errorf("error initializing logger - %s", err.Error()))
	}

	log = zap.L()
	defer logger.Flush()

	// configure vault client if vaultRoleId & vaultSecretId are set,
	// otherwise the BMC password must come from the environment
	if *vaultRoleId != "" && *vaultSecretId != "" {
		props, err := tm_vault.ParseSecretProperties(*vaultSecretProps)
		if err != nil {
			log.Fatal("invalid --vault.secret-properties", zap.Error(err))
		}

		vault, err = tm_vault.NewVaultAppRoleClient(
			ctx,
			tm_vault.Parameters{
				Address:         *vaultAddr,
				ApproleRoleID:   *vaultRoleId,
				ApproleSecretID: *vaultSecretId,
			},
			props,
		)
		if err != nil {
			log.Fatal("failed initializing vault client", zap.Error(err),
				zap.String("vault_address", *vaultAddr))
		}

		common.BMCCreds.Vault = vault

		// start go routine to continuously renew vault token
		wg.Add(1)
		go vault.RenewToken(ctx, doneRenew, tokenLifecycle, &wg)

		if _, err := common.BMCCreds.Refresh(ctx); err != nil {
			log.Fatal("failed retrieving BMC credentials from vault", zap.Error(err))
		}
	} else if *password == "" {
		log.Fatal("BMC_PASSWORD environment variable not set and vault is not configured")
	}

	// PSU endpoint discovery is a startup precondition, a BMC we cannot
	// enumerate is a BMC we cannot serve scrapes for
	exp, err := exporter.NewExporter(ctx, *bmcIP)
	if err != nil {
		log.Fatal("failed initializing exporter", zap.Error(err), zap.String("bmc_ip", *bmcIP))
	}

	metricsConfig := &handlers.MetricsConfig{
		Exporter: exp,
	}

	mux := http.NewServeMux()

	mux.HandleFunc("GET /info", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(buildinfo.Info)
	})

	mux.HandleFunc("GET /metrics", handlers.MetricsHandler(metricsConfig))

	tmplIndex := template.Must(template.New("index").Parse(indexTmpl))
	mux.HandleFunc("GET /", func(w http.ResponseWriter, r *http.Request) {
		err := tmplIndex.Execute(w, buildinfo.Info)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	})

	mux.HandleFunc("GET /verbosity", logger.Verbosity)
	mux.HandleFunc("PUT /verbosity", logger.SetVerbosity)

	instrumentation := muxprom.NewDefaultInstrumentation()
	wrappedmux := logging.LoggingHandler(instrumentation.Middleware(mux))

	srv := &http.Server{
		Addr:    ":" + *exporterPort,
		Handler: wrappedmux,
	}

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, os.Interrupt, syscall.SIGTERM, syscall.SIGHUP)

	listener, err := net.Listen("tcp4", ":"+*exporterPort)
	if err != nil {
		log.Error("starting "+app+" service failed", zap.Error(err))
		signals <- syscall.SIGTERM
	} else {
		wg.Add(1)
		go func() {
			defer wg.Done()

			if err := srv.Serve(listener); err != nil && err != http.ErrServerClosed {
				log.Error("http server received an error", zap.Error(err))
				signals <- syscall.SIGTERM
			}
		}()

		log.Info("started " + app + " service")
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		s := <-signals
		log.Info(s.String() + " signal caught, stopping app")
		if err := srv.Shutdown(ctx); err != nil {
			log.Error("http server shutdown failed", zap.Error(err))
		}

		if vault != nil && vault.IsLoggedIn() {
			// send signal to stop token watcher if we were able to successfully login
			tokenLifecycle <- true
		}
		if vault != nil {
			doneRenew <- true
		}
	}()

	wg.Wait()
}
