package channels

import (
	"fmt"
	"log/slog"

	"equiv/internal/config"
	"equiv/internal/model"
	"equiv/internal/report"
)

// NewFromConfig wires one source-specific updater per configured source
// publisher and the forced updater, all sharing a single Linker.
func NewFromConfig(cfg *config.Config, st Store, reporter report.Reporter, logger *slog.Logger) (*Router, error) {
	linker := NewLinker(st, reporter, logger)
	namespace := cfg.Channels.AliasNamespace
	matcher := AnyMatcher(AliasMatcher(namespace), TitleMatcher())

	updaters := make(map[model.Publisher]Updater)
	for _, publisher := range cfg.ChannelSourcePublishers() {
		u, err := NewSourceSpecificUpdater(publisher, cfg.ChannelCandidatePublishers(), matcher, st, linker, logger)
		if err != nil {
			return nil, err
		}
		updaters[publisher] = u
	}
	if forced := cfg.ForcedPublisher(); forced != "" {
		if _, dup := updaters[forced]; dup {
			return nil, fmt.Errorf("channel publisher %s configured twice", forced)
		}
		u, err := NewForcedUpdater(forced, namespace, NewMappings(cfg.Paths.ForcedMappings, logger), st, linker, logger)
		if err != nil {
			return nil, err
		}
		updaters[forced] = u
	}
	return NewRouter(updaters, reporter, logger), nil
}
