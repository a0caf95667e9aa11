// Copyright 2017 Felipe A. Cavani. All rights reserved.
// Use of this source code is governed by the Apache License 2.0
// license that can be found in the LICENSE file.

package main

import (
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/fcavani/e"
	log "github.com/fcavani/slog"
	"github.com/fcavani/slog/systemd"
	flag "github.com/spf13/pflag"
	"github.com/spf13/viper"

	hserver "github.com/fcavani/htmlmin/http"
	"github.com/fcavani/htmlmin/middlewares/minify"
)

var daemonName = "htmlmind"

//Version stores the version number of this service.
var Version string

func init() {
	if Version == "" {
		Version = "dev"
	}
}

func main() {
	defer log.Recover(false)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGQUIT, syscall.SIGTERM)

	viper.SetEnvPrefix(daemonName)
	viper.BindEnv("confdir")
	viper.SetConfigType("yaml")
	viper.SetConfigName("htmlmin")
	viper.SetDefault("minify.enable", true)
	viper.SetDefault("minify.comments", true)
	viper.SetDefault("minify.css", true)
	viper.SetDefault("minify.js", true)
	viper.SetDefault("minify.whitespace", true)

	fset := flag.NewFlagSet("default", flag.ContinueOnError)
	help := fset.Bool("help", false, "Shows help.")
	ver := fset.Bool("version", false, "Show the version.")

	confdir := fset.String("confdir", ".", "Directory where will be the configuration files.")

	logLevel := fset.String("log-level", "", "Log level.")
	name := fset.String("name", daemonName, "Name of the service")
	pidFile := fset.String("pid", daemonName+".pid", "Pid file for this service.")

	err := fset.Parse(os.Args)
	if err != nil {
		log.Fatal(err)
	}

	if *help {
		fset.PrintDefaults()
		os.Exit(1)
	}
	if *ver {
		println(Version)
		os.Exit(1)
	}

	log.Tag("startup", "services", *name).Println("Starting:", *name)

	if *confdir != "" {
		viper.AddConfigPath(*confdir)
		err = viper.ReadInConfig()
		if _, notfound := err.(viper.ConfigFileNotFoundError); err != nil && !notfound {
			log.Fatal("Can't read the configuration:", err)
		}
	}

	log.Tag("startup", "services", *name).Println("Configuring log level...")

	ll := viper.GetStringMapString("log")["level"]
	if *logLevel != "" {
		ll = *logLevel
	}
	if ll == "" {
		ll = "info"
	}
	level, err := log.ParseLevel(ll)
	if err != nil {
		log.Tag("startup", "services", *name).Fatalln(err)
	}
	setupLog(*name, level)

	if *pidFile != "" {
		log.Tag("startup", "services", *name).Println("Writing pid...")
		err = writePidFile(*pidFile)
		if err != nil {
			log.Tag("startup", "services", *name).Fatalln(err)
		}
	}

	// The policy is read once here and never changes again. All requests
	// share the same minifier.
	policy := &minify.Policy{
		RemoveComments:     viper.GetBool("minify.comments"),
		MinifyCSS:          viper.GetBool("minify.css"),
		MinifyJS:           viper.GetBool("minify.js"),
		CollapseWhitespace: viper.GetBool("minify.whitespace"),
	}
	m := minify.New(policy)

	root := viper.GetStringMapString("http")["root"]
	if root == "" {
		root = "."
	}
	handler := minify.Minify(m, viper.GetBool("minify.enable"),
		http.FileServer(http.Dir(root)).ServeHTTP)

	h := &hserver.HTTPServer{
		HTTPAddr:           viper.GetStringMapString("http")["bindaddrs"],
		HTTPSAddr:          viper.GetStringMapString("https")["bindaddrs"],
		Certificate:        viper.GetStringMapString("https")["certificate"],
		PrivateKey:         viper.GetStringMapString("https")["privatekey"],
		CA:                 viper.GetStringMapString("https")["ca"],
		InsecureSkipVerify: viper.GetBool("https.insecureskipverify"),
		Handler:            handler,
	}

	err = h.Init()
	if err != nil {
		log.Tag("startup", "services", *name).Fatalln(err)
	}
	defer h.Stop()

	log.Tag("startup", "services", *name).Println("Serving", root, "on", h.GetHTTPAddr())

	<-sig

	if *pidFile != "" {
		err = os.Remove(*pidFile)
		if err != nil {
			log.Tag("startup", "services", *name).Fatal(err)
		}
	}
}

func setupLog(name string, level log.Level) {
	fname := viper.GetStringMapString("log")["file"]

	if fname == "" {
		log.Println("No log to file, log to stderr")
		log.SetOutput(name, level, os.Stderr, nil, nil, 1000)
		return
	}

	f, err := os.OpenFile(fname, os.O_WRONLY|os.O_APPEND|os.O_CREATE, 0600)
	if err != nil {
		log.Fatalln("open log file failed:", err)
	}

	if systemd.Enabled() {
		log.SetOutput(name, level, f, log.CommitSd, log.SdFormater, 1000)
	} else {
		log.SetOutput(name, level, f, nil, nil, 1000)
	}

	log.DebugInfo()

	log.Println("Logger configured...")
}

func writePidFile(file string) error {
	pid := os.Getpid()
	pidstr := strconv.FormatInt(int64(pid), 10)
	err := os.WriteFile(file, []byte(pidstr), 0644)
	if err != nil {
		return e.Forward(err)
	}
	return nil
}
