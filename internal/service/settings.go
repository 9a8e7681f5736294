package service

import (
	"context"
	"log/slog"

	"readiness/internal/analysis"
	"readiness/internal/config"
)

// ProfileFTP reports the FTP stored in a remote athlete profile
type ProfileFTP interface {
	AthleteFTP(ctx context.Context) (float64, error)
}

// ConfigSettings serves thresholds from the config file, optionally
// enriched with the FTP from a remote profile
type ConfigSettings struct {
	cfg     *config.Config
	profile ProfileFTP
	logger  *slog.Logger
}

// NewConfigSettings creates a settings source. profile may be nil.
func NewConfigSettings(cfg *config.Config, profile ProfileFTP, logger *slog.Logger) *ConfigSettings {
	if logger == nil {
		logger = discardLogger()
	}
	return &ConfigSettings{cfg: cfg, profile: profile, logger: logger}
}

// Thresholds implements SettingsSource
func (s *ConfigSettings) Thresholds(ctx context.Context) (analysis.Thresholds, error) {
	if s.cfg == nil {
		return analysis.Thresholds{}, ErrConfigurationIncomplete
	}
	if err := s.cfg.Validate(); err != nil {
		return analysis.Thresholds{}, err
	}

	var profileFTP float64
	if s.profile != nil {
		ftp, err := s.profile.AthleteFTP(ctx)
		if err != nil {
			s.logger.Warn("profile FTP unavailable, using manual FTP", "error", err)
		} else {
			profileFTP = ftp
		}
	}
	return s.cfg.Thresholds(profileFTP), nil
}
