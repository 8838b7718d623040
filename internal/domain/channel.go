package domain

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
)

// Имена каналов SmartSPIM имеют вид Ex_488_Em_525:
// длина волны возбуждения и длина волны эмиссии в нанометрах.
var channelNamePattern = regexp.MustCompile(`^Ex_(\d{3})_Em_(\d{3})$`)

// Channel — один канал визуализации (длина волны) внутри датасета.
//
// Каналы обнаруживаются по раскладке результатов upstream-этапа и
// неизменяемы после обнаружения. Каждый канал обрабатывается
// downstream-капсулой независимо от остальных.
type Channel struct {
	// Name — имя канала, например "Ex_488_Em_525".
	Name string `json:"name"`

	// SourcePrefix — префикс в хранилище, где лежат данные канала.
	SourcePrefix string `json:"source_prefix"`
}

// Excitation возвращает длину волны возбуждения в нанометрах.
// Возвращает 0, если имя канала не соответствует соглашению.
func (c Channel) Excitation() int {
	m := channelNamePattern.FindStringSubmatch(c.Name)
	if m == nil {
		return 0
	}
	v, _ := strconv.Atoi(m[1])
	return v
}

// Emission возвращает длину волны эмиссии в нанометрах.
// Возвращает 0, если имя канала не соответствует соглашению.
func (c Channel) Emission() int {
	m := channelNamePattern.FindStringSubmatch(c.Name)
	if m == nil {
		return 0
	}
	v, _ := strconv.Atoi(m[2])
	return v
}

// IsValidChannelName проверяет соответствие имени соглашению Ex_###_Em_###.
func IsValidChannelName(name string) bool {
	return channelNamePattern.MatchString(name)
}

// SortChannels сортирует каналы по имени.
// Порядок в агрегатах детерминирован независимо от порядка обнаружения.
func SortChannels(channels []Channel) {
	sort.Slice(channels, func(i, j int) bool {
		return channels[i].Name < channels[j].Name
	})
}

// String возвращает строковое представление Channel.
func (c Channel) String() string {
	return fmt.Sprintf("%s (%s)", c.Name, c.SourcePrefix)
}
