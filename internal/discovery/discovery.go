package discovery

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/shaiso/spim-dispatch/internal/config"
	"github.com/shaiso/spim-dispatch/internal/domain"
	"github.com/shaiso/spim-dispatch/internal/storage"
)

// Discoverer находит каналы датасета в объектном хранилище.
type Discoverer struct {
	store   storage.Store
	prefix  string
	pattern *regexp.Regexp
	logger  *slog.Logger
}

// New создаёт Discoverer из конфигурации обнаружения.
func New(store storage.Store, cfg config.Discovery, logger *slog.Logger) (*Discoverer, error) {
	pattern, err := regexp.Compile(cfg.Pattern)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrBadPattern, cfg.Pattern, err)
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &Discoverer{
		store:   store,
		prefix:  cfg.Prefix,
		pattern: pattern,
		logger:  logger,
	}, nil
}

// Discover возвращает упорядоченный дедуплицированный набор каналов
// под корнем датасета.
//
// Побочных эффектов нет: только листинг. Пустой результат — ошибка
// ErrNoChannels, ошибки листинга оборачиваются и возвращаются как есть.
func (d *Discoverer) Discover(ctx context.Context, datasetRoot string) ([]domain.Channel, error) {
	root := joinPrefix(datasetRoot, d.prefix)

	keys, err := d.store.List(ctx, root)
	if err != nil {
		return nil, fmt.Errorf("list channels under %s: %w", root, err)
	}

	seen := make(map[string]struct{})
	var channels []domain.Channel
	for _, key := range keys {
		name := d.pattern.FindString(key)
		if name == "" {
			continue
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}

		channels = append(channels, domain.Channel{
			Name:         name,
			SourcePrefix: joinPrefix(root, name),
		})
	}

	if len(channels) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoChannels, root)
	}

	domain.SortChannels(channels)

	d.logger.Info("channels discovered",
		"root", root,
		"count", len(channels),
	)

	return channels, nil
}

// joinPrefix склеивает префиксы хранилища с одним "/" на стыке.
func joinPrefix(a, b string) string {
	if a == "" {
		return b
	}
	return strings.TrimSuffix(a, "/") + "/" + strings.TrimPrefix(b, "/")
}
