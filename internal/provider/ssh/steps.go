// Package ssh generates the operator's SSH keypair for a source-control host.
package ssh

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/felixgeelhaar/groundwork/internal/domain/config"
	"github.com/felixgeelhaar/groundwork/internal/domain/provision"
	"github.com/felixgeelhaar/groundwork/internal/ports"
	"github.com/felixgeelhaar/groundwork/internal/validation"
)

// KeygenStep creates a keypair unless one already exists at keyPath.
// Without an email for the key comment it defers. A private key whose public
// half went missing gets the public key rebuilt from it.
type KeygenStep struct {
	keyPath  string
	fs       ports.FileSystem
	random   io.Reader
	restored bool
}

// NewKeygenStep creates a new KeygenStep.
func NewKeygenStep(keyPath string, fs ports.FileSystem) *KeygenStep {
	return &KeygenStep{keyPath: keyPath, fs: fs}
}

// WithRandom overrides the entropy source.
func (s *KeygenStep) WithRandom(r io.Reader) *KeygenStep {
	s.random = r
	return s
}

// Name returns the step name.
func (s *KeygenStep) Name() string {
	return "ssh:keygen"
}

// Check reports satisfied when both halves of the keypair exist. An encrypted
// private key without a public key is left alone.
func (s *KeygenStep) Check(ctx provision.RunContext) (provision.Status, error) {
	if s.fs.Exists(s.keyPath) {
		if s.fs.Exists(s.publicPath()) {
			return provision.StatusSatisfied, nil
		}
		if _, err := s.derivePublicKey(ctx); err != nil {
			return provision.StatusSatisfied, nil
		}
		return provision.StatusNeedsApply, nil
	}
	if ctx.Values().String(provision.KeyIdentityEmail) == "" {
		return provision.StatusDeferred, nil
	}
	return provision.StatusNeedsApply, nil
}

// Apply generates the keypair, or rebuilds a missing public key, and records
// the public key for the operator.
func (s *KeygenStep) Apply(ctx provision.RunContext) error {
	if s.fs.Exists(s.keyPath) {
		return s.restorePublicKey(ctx)
	}

	email := ctx.Values().String(provision.KeyIdentityEmail)
	if err := validation.ValidateEmail(email); err != nil {
		return fmt.Errorf("invalid key comment: %w", err)
	}
	if err := validation.ValidatePath(s.keyPath); err != nil {
		return err
	}

	pair, err := GenerateEd25519KeyPair(s.random, email)
	if err != nil {
		return err
	}

	dir := filepath.Dir(s.keyPath)
	if err := s.fs.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("failed to create %s: %w", dir, err)
	}
	if err := s.fs.WriteFile(s.keyPath, pair.PrivateKey, 0o600); err != nil {
		return fmt.Errorf("failed to write private key: %w", err)
	}
	return s.writePublicKey(ctx, pair.PublicKey)
}

// Describe summarizes the applied change.
func (s *KeygenStep) Describe() string {
	if s.restored {
		return "restored public key at " + s.publicPath()
	}
	return "generated ed25519 keypair at " + s.keyPath
}

func (s *KeygenStep) restorePublicKey(ctx provision.RunContext) error {
	pub, err := s.derivePublicKey(ctx)
	if err != nil {
		return fmt.Errorf("failed to derive public key from %s: %w", s.keyPath, err)
	}
	s.restored = true
	return s.writePublicKey(ctx, pub)
}

func (s *KeygenStep) derivePublicKey(ctx provision.RunContext) ([]byte, error) {
	data, err := s.fs.ReadFile(s.keyPath)
	if err != nil {
		return nil, err
	}
	return PublicKeyFromPrivate(data, ctx.Values().String(provision.KeyIdentityEmail))
}

func (s *KeygenStep) writePublicKey(ctx provision.RunContext, pub []byte) error {
	if err := s.fs.WriteFile(s.publicPath(), pub, 0o644); err != nil {
		return fmt.Errorf("failed to write public key: %w", err)
	}
	ctx.Values().Set(provision.KeySSHPublicKey, strings.TrimSpace(string(pub)))
	ctx.Values().Set(provision.KeySSHPublicPath, s.publicPath())
	return nil
}

func (s *KeygenStep) publicPath() string {
	return s.keyPath + ".pub"
}

// DeferReason explains why no key was generated.
func (s *KeygenStep) DeferReason() string {
	return "email not supplied for the key comment"
}

// Provider turns SSH configuration into the keygen step.
type Provider struct {
	fs ports.FileSystem
}

// NewProvider creates a new ssh Provider.
func NewProvider(fs ports.FileSystem) *Provider {
	return &Provider{fs: fs}
}

// Name returns the provider name.
func (p *Provider) Name() string {
	return "ssh"
}

// Steps returns the keygen step.
func (p *Provider) Steps(cfg *config.Config) []provision.Step {
	return []provision.Step{NewKeygenStep(cfg.SSHKeyPath(), p.fs)}
}

var (
	_ provision.Step      = (*KeygenStep)(nil)
	_ provision.Describer = (*KeygenStep)(nil)
	_ provision.Deferrer  = (*KeygenStep)(nil)
)
