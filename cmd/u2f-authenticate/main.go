// Command u2f-authenticate reads a registration response produced by
// u2f-register, asks the first connected authenticator to sign a fresh
// challenge with that credential, and writes the signed response as
// JSON. Ported from original_source/examples/authenticate.rs.
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

const presencePollInterval = 200 * time.Millisecond

var (
	app        = kingpin.New("u2f-authenticate", "Authenticate against a previously registered U2F credential.")
	regPath    = app.Flag("reg", "Path to the registration response written by u2f-register.").Default("regresp.json").String()
	outPath    = app.Flag("out", "Path to write the JSON authenticate response to.").Default("authresp.json").String()
	verifyFlag = app.Flag("verify", "Verify the registration's attestation signature before authenticating (not required to authenticate).").Bool()
	verbose    = app.Flag("verbose", "Enable debug logging.").Short('v').Bool()
)

type registrationDoc struct {
	ChallengeParam string                     `json:"challengeParam"`
	AppParam       string                     `json:"appParam"`
	Response       *u2ftoken.RegisterResponse `json:"response"`
}

func main() {
	kingpin.MustParse(app.Parse(os.Args[1:]))

	log.SetFormatter(&log.TextFormatter{})
	if *verbose {
		log.SetLevel(log.DebugLevel)
	}

	if err := run(); err != nil {
		log.WithError(err).Error("u2f-authenticate failed")
		os.Exit(1)
	}
}

func run() error {
	doc, err := readRegistration(*regPath)
	if err != nil {
		return trace.Wrap(err)
	}

	if *verifyFlag {
		appParam, err := base64.RawURLEncoding.DecodeString(doc.AppParam)
		if err != nil {
			return trace.Wrap(err, "decode appParam")
		}
		challengeParam, err := base64.RawURLEncoding.DecodeString(doc.ChallengeParam)
		if err != nil {
			return trace.Wrap(err, "decode challengeParam")
		}
		if err := u2f.VerifyRegistration(doc.Response, challengeParam, appParam); err != nil {
			return trace.Wrap(err, "attestation signature did not verify")
		}
		log.Info("attestation signature verified")
	}

	// A fresh authentication uses a new challenge but the same app
	// parameter the credential was registered under.
	challengeParam, err := randomParam()
	if err != nil {
		return trace.Wrap(err)
	}
	appParam, err := base64.RawURLEncoding.DecodeString(doc.AppParam)
	if err != nil {
		return trace.Wrap(err, "decode appParam")
	}

	transport := u2fhid.FlynnTransport{}
	devices, err := u2f.Devices(transport)
	if err != nil {
		return trace.Wrap(err, "enumerate devices")
	}
	if len(devices) == 0 {
		return trace.NotFound("no U2F HID device found")
	}

	auth, err := authenticate(transport, devices[0], challengeParam, appParam, doc.Response.KeyHandle)
	if err != nil {
		return trace.Wrap(err)
	}

	return writeJSON(*outPath, auth)
}

func authenticate(transport u2fhid.Transport, info u2fhid.DeviceInfo, challengeParam, appParam, keyHandle []byte) (*u2ftoken.AuthenticateResponse, error) {
	channel, err := u2f.OpenDevice(transport, info)
	if err != nil {
		return nil, trace.Wrap(err, "open device")
	}
	defer channel.Close()

	if err := channel.Init(); err != nil {
		return nil, trace.Wrap(err, "init")
	}
	log.WithField("channel_id", channel.ChannelID()).Info("device initialised")

	if _, err := channel.Ping([]byte("u2f-authenticate")); err != nil {
		return nil, trace.Wrap(err, "ping")
	}
	_ = channel.Wink()

	version, err := channel.GetVersion()
	if err != nil {
		return nil, trace.Wrap(err, "get version")
	}
	log.WithField("version", version.String()).Info("got u2f version")

	for {
		auth, err := channel.Authenticate(challengeParam, appParam, keyHandle)
		if err == nil {
			return auth, nil
		}

		var tokenErr *u2ftoken.Error
		if asU2FTokenError(err, &tokenErr) && tokenErr.Kind == u2ftoken.KindUserPresenceRequired {
			log.Debug("waiting for user presence")
			time.Sleep(presencePollInterval)
			continue
		}
		return nil, trace.Wrap(err, "authenticate")
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

func readRegistration(path string) (*registrationDoc, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, trace.Wrap(err, "open %v", path)
	}
	defer f.Close()

	var doc registrationDoc
	if err := json.NewDecoder(f).Decode(&doc); err != nil {
		return nil, trace.Wrap(err, "decode %v", path)
	}
	return &doc, nil
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
