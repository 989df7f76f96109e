// Command u2f-get-version enumerates connected U2F HID authenticators
// and prints the negotiated protocol version of each. Ported from
// original_source/examples/get_version.rs.
package main

import (
	"os"

	"github.com/gravitational/kingpin"
	"github.com/gravitational/trace"
	log "github.com/sirupsen/logrus"

	u2f "github.com/cmsd2/u2f"
	"github.com/cmsd2/u2f/u2fhid"
)

var (
	app     = kingpin.New("u2f-get-version", "Print the U2F version of every connected authenticator.")
	verbose = app.Flag("verbose", "Enable debug logging.").Short('v').Bool()
)

func main() {
	kingpin.MustParse(app.Parse(os.Args[1:]))

	log.SetFormatter(&log.TextFormatter{})
	if *verbose {
		log.SetLevel(log.DebugLevel)
	}

	if err := run(); err != nil {
		log.WithError(err).Error("u2f-get-version failed")
		os.Exit(1)
	}
}

func run() error {
	transport := u2fhid.FlynnTransport{}

	devices, err := u2f.Devices(transport)
	if err != nil {
		return trace.Wrap(err, "enumerate devices")
	}
	if len(devices) == 0 {
		return trace.NotFound("no U2F HID device found")
	}

	for _, info := range devices {
		if err := printVersion(transport, info); err != nil {
			log.WithError(err).WithField("path", info.Path).Warn("failed to query device")
		}
	}
	return nil
}

func printVersion(transport u2fhid.Transport, info u2fhid.DeviceInfo) error {
	channel, err := u2f.OpenDevice(transport, info)
	if err != nil {
		return trace.Wrap(err, "open device")
	}
	defer channel.Close()

	if err := channel.Init(); err != nil {
		return trace.Wrap(err, "init")
	}

	if _, err := channel.Ping([]byte("u2f-get-version")); err != nil {
		return trace.Wrap(err, "ping")
	}
	_ = channel.Wink()

	version, err := channel.GetVersion()
	if err != nil {
		return trace.Wrap(err, "get version")
	}

	log.WithFields(log.Fields{
		"version":    version.String(),
		"vendor_id":  info.VendorID,
		"product_id": info.ProductID,
		"path":       info.Path,
	}).Info("got u2f version")
	return nil
}
