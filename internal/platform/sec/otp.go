// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package sec

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image/png"
	"time"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
)

const (
	otpPeriod = 30
	otpSkew   = 1
	qrSize    = 256

	// OTPDigits is the length of a one-time password.
	OTPDigits = 6
)

// OTPKey is a freshly generated TOTP secret and the ways to hand it to an authenticator app.
type OTPKey struct {
	Secret string `json:"-"`

	// URL is the otpauth:// provisioning URI.
	URL string `json:"otpauth_url"`

	// QRCode is the provisioning URI rendered as a PNG data URL.
	QRCode string `json:"qr_code"`
}

// OTPEngine generates and validates RFC 6238 codes (SHA1, 6 digits, 30 s).
type OTPEngine struct {
	issuer string
	now    func() time.Time
}

// NewOTPEngine builds an engine whose secrets are labelled with issuer.
// A nil now defaults to time.Now.
func NewOTPEngine(issuer string, now func() time.Time) *OTPEngine {
	if now == nil {
		now = time.Now
	}
	return &OTPEngine{issuer: issuer, now: now}
}

// GenerateSecret creates a new random secret for the account label.
func (engine *OTPEngine) GenerateSecret(accountName string) (*OTPKey, error) {
	if accountName == "" {
		return nil, errors.New("sec: otp account name must not be empty")
	}

	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      engine.issuer,
		AccountName: accountName,
		Period:      otpPeriod,
		Digits:      otp.DigitsSix,
		Algorithm:   otp.AlgorithmSHA1,
	})
	if err != nil {
		return nil, fmt.Errorf("sec: failed to generate otp secret: %w", err)
	}

	qrCode, err := encodeQRCode(key)
	if err != nil {
		return nil, err
	}

	return &OTPKey{Secret: key.Secret(), URL: key.URL(), QRCode: qrCode}, nil
}

// Validate reports whether code is valid for secret at the current time,
// allowing one period of clock drift either way.
func (engine *OTPEngine) Validate(secret, code string) bool {
	valid, err := totp.ValidateCustom(code, secret, engine.now().UTC(), engine.validateOpts())
	return err == nil && valid
}

func (engine *OTPEngine) validateOpts() totp.ValidateOpts {
	return totp.ValidateOpts{
		Period:    otpPeriod,
		Skew:      otpSkew,
		Digits:    otp.DigitsSix,
		Algorithm: otp.AlgorithmSHA1,
	}
}

func encodeQRCode(key *otp.Key) (string, error) {
	img, err := key.Image(qrSize, qrSize)
	if err != nil {
		return "", fmt.Errorf("sec: failed to render otp qr code: %w", err)
	}

	var buffer bytes.Buffer
	if err := png.Encode(&buffer, img); err != nil {
		return "", fmt.Errorf("sec: failed to encode otp qr code: %w", err)
	}

	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buffer.Bytes()), nil
}
