package main

import (
	"context"

	adapters "github.com/ochairo/appshortcuts/internal/domain-adapters/gateways"
	orchestrators "github.com/ochairo/appshortcuts/internal/domain-orchestrators"
	"github.com/ochairo/appshortcuts/internal/domain/entities"
	"github.com/ochairo/appshortcuts/internal/domain/interfaces/gateways"
	"github.com/ochairo/appshortcuts/internal/domain/services"
)

// packageGateway is the device gateway as the commands use it
type packageGateway interface {
	gateways.PackageGateway
	Refresh(ctx context.Context) error
}

// packageChecker is the package verifier as the commands use it
type packageChecker interface {
	gateways.PackageVerifier
	Verify(ctx context.Context, path string) (*entities.IntegrityReport, error)
}

func (a *app) newVerifier() (packageChecker, error) {
	v, err := adapters.NewPackageVerifier(adapters.PackageVerifierConfig{
		KeyringPath:      a.cfg.Security.Keyring,
		RequireSignature: a.cfg.Security.RequireSignature,
		VerifyChecksums:  a.cfg.Security.VerifyChecksums,
		Logger:           a.logger,
	})
	if err != nil {
		return nil, err
	}
	return v, nil
}

func (a *app) newGateway(root string) (packageGateway, error) {
	verifier, err := a.newVerifier()
	if err != nil {
		return nil, err
	}
	g, err := adapters.NewDeviceGateway(adapters.DeviceGatewayConfig{
		Root:            root,
		Verifier:        verifier,
		Logger:          a.logger,
		TableCacheSize:  a.cfg.Cache.TableEntries,
		StringCacheSize: a.cfg.Cache.StringEntries,
	})
	if err != nil {
		return nil, err
	}
	return g, nil
}

func (a *app) newShortcutOrchestrator(g gateways.PackageGateway) *orchestrators.ShortcutOrchestrator {
	return orchestrators.NewShortcutOrchestrator(g, services.NewShortcutService(a.logger), a.logger)
}

func (a *app) newEnumerationOrchestrator(g gateways.PackageGateway) *orchestrators.EnumerationOrchestrator {
	return orchestrators.NewEnumerationOrchestrator(
		a.newShortcutOrchestrator(g),
		g,
		orchestrators.EnumerationOrchestratorConfig{Workers: a.cfg.Workers},
		a.logger,
	)
}
