package dispatcher

import (
	"strings"

	"github.com/shaiso/spim-dispatch/internal/config"
	"github.com/shaiso/spim-dispatch/internal/domain"
)

// defaultOutputPrefixTemplate используется, когда шаблон не задан
// конфигурацией: результаты каждого запуска ложатся рядом с датасетом.
const defaultOutputPrefixTemplate = "{dataset}/processed/{channel}"

// BuildRunRequest строит полностью разрешённый запрос для одного канала.
//
// Функция чистая: все решения о параметрах принимаются здесь и ровно
// один раз, дальше запрос не изменяется. background — фоновый канал
// датасета, одинаковый для всех запросов одного вызова.
func BuildRunRequest(ch domain.Channel, background string, pipe config.Pipeline, dataset string) (domain.RunRequest, error) {
	if pipe.CapsuleID == "" {
		return domain.RunRequest{}, ErrMissingCapsuleID
	}
	if pipe.InputPathTemplate == "" {
		return domain.RunRequest{}, ErrMissingInputTemplate
	}

	params := make(map[string]string, len(pipe.Parameters)+3)
	for k, v := range pipe.Parameters {
		params[k] = v
	}
	params[domain.ParamChannel] = ch.Name
	params[domain.ParamBackgroundChannel] = background
	params[domain.ParamInputPath] = expand(pipe.InputPathTemplate, dataset, ch.Name)

	assets := make([]domain.DataAsset, len(pipe.DataAssets))
	for i, a := range pipe.DataAssets {
		assets[i] = domain.DataAsset{ID: a.ID, Mount: a.Mount}
	}

	tmpl := pipe.OutputPrefixTemplate
	if tmpl == "" {
		tmpl = defaultOutputPrefixTemplate
	}

	return domain.RunRequest{
		CapsuleID:    pipe.CapsuleID,
		Parameters:   params,
		DataAssets:   assets,
		OutputPrefix: expand(tmpl, dataset, ch.Name),
	}, nil
}

// BackgroundChannel выбирает фоновый канал датасета.
//
// Явно сконфигурированный канал имеет приоритет; иначе берётся первый
// по имени из обнаруженных.
func BackgroundChannel(configured string, channels []domain.Channel) string {
	if configured != "" {
		return configured
	}
	if len(channels) > 0 {
		return channels[0].Name
	}
	return ""
}

// expand подставляет {dataset} и {channel} в шаблон.
func expand(tmpl, dataset, channel string) string {
	s := strings.ReplaceAll(tmpl, "{dataset}", dataset)
	return strings.ReplaceAll(s, "{channel}", channel)
}
