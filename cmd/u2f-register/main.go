// Command u2f-register enumerates connected U2F HID authenticators,
// registers a new credential on the first one found, and writes the
// registration response as JSON. It is a thin driver over package u2f,
// ported from original_source/examples/register.rs.
package main

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"os"
	"time"

	"github.com/gravitational/kingpin"
	"github.com/gravitational/trace"
	log "github.com/sirupsen/logrus"

	u2f "github.com/cmsd2/u2f"
	"github.com/cmsd2/u2f/u2fhid"
	"github.com/cmsd2/u2f/u2ftoken"
)

// presencePollInterval is the caller-side pacing delay recommended by
// SPEC_FULL.md §1 between UserPresenceRequired retries.
const presencePollInterval = 200 * time.Millisecond

var (
	app       = kingpin.New("u2f-register", "Register a new U2F credential on the first connected authenticator.")
	outPath   = app.Flag("out", "Path to write the JSON registration response to.").Default("regresp.json").String()
	appParamB = app.Flag("app-param", "Base64 (raw URL) application parameter; a random 32-byte value is used if omitted.").String()
	verbose   = app.Flag("verbose", "Enable debug logging.").Short('v').Bool()
)

func main() {
	kingpin.MustParse(app.Parse(os.Args[1:]))

	log.SetFormatter(&log.TextFormatter{})
	if *verbose {
		log.SetLevel(log.DebugLevel)
	}

	if err := run(); err != nil {
		log.WithError(err).Error("u2f-register failed")
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

	device := devices[0]
	log.WithFields(log.Fields{
		"vendor_id":  device.VendorID,
		"product_id": device.ProductID,
		"path":       device.Path,
	}).Info("found device")

	challengeParam, err := randomParam()
	if err != nil {
		return trace.Wrap(err)
	}
	appParam, err := resolveAppParam(*appParamB)
	if err != nil {
		return trace.Wrap(err)
	}

	reg, err := register(transport, device, challengeParam, appParam)
	if err != nil {
		return trace.Wrap(err)
	}

	return writeJSON(*outPath, registrationDoc{
		ChallengeParam: base64.RawURLEncoding.EncodeToString(challengeParam),
		AppParam:       base64.RawURLEncoding.EncodeToString(appParam),
		Response:       reg,
	})
}

func register(transport u2fhid.Transport, info u2fhid.DeviceInfo, challengeParam, appParam []byte) (*u2ftoken.RegisterResponse, error) {
	channel, err := u2f.OpenDevice(transport, info)
	if err != nil {
		return nil, trace.Wrap(err, "open device")
	}
	defer channel.Close()

	if err := channel.Init(); err != nil {
		return nil, trace.Wrap(err, "init")
	}
	log.WithField("channel_id", channel.ChannelID()).Info("device initialised")

	if _, err := channel.Ping([]byte("u2f-register")); err != nil {
		return nil, trace.Wrap(err, "ping")
	}

	// Wink is a liveness courtesy; its result is not load-bearing.
	_ = channel.Wink()

	version, err := channel.GetVersion()
	if err != nil {
		return nil, trace.Wrap(err, "get version")
	}
	log.WithField("version", version.String()).Info("got u2f version")

	for {
		reg, err := channel.Register(challengeParam, appParam)
		if err == nil {
			return reg, nil
		}

		var tokenErr *u2ftoken.Error
		if asU2FTokenError(err, &tokenErr) && tokenErr.Kind == u2ftoken.KindUserPresenceRequired {
			log.Debug("waiting for user presence")
			time.Sleep(presencePollInterval)
			continue
		}
		return nil, trace.Wrap(err, "register")
	}
}

func asU2FTokenError(err error, target **u2ftoken.Error) bool {
	for err != nil {
		if e, ok := err.(*u2ftoken.Error); ok {
			*target = e
			return true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}

func randomParam() ([]byte, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return nil, trace.Wrap(err)
	}
	return b, nil
}

func resolveAppParam(encoded string) ([]byte, error) {
	if encoded == "" {
		return randomParam()
	}
	b, err := base64.RawURLEncoding.DecodeString(encoded)
	if err != nil {
		return nil, trace.Wrap(err, "decode app-param")
	}
	if len(b) != 32 {
		return nil, trace.BadParameter("app-param must decode to 32 bytes, got %d", len(b))
	}
	return b, nil
}

// registrationDoc is the on-disk JSON shape written by this CLI: the
// negotiated parameters alongside the parsed registration response, so
// u2f-authenticate can replay them without re-deriving anything.
type registrationDoc struct {
	ChallengeParam string                    `json:"challengeParam"`
	AppParam       string                    `json:"appParam"`
	Response       *u2ftoken.RegisterResponse `json:"response"`
}

func writeJSON(path string, v interface{}) error {
	f, err := os.Create(path)
	if err != nil {
		return trace.Wrap(err, "create %v", path)
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return trace.Wrap(enc.Encode(v))
}
