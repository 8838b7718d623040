package domain

import (
	"testing"
)

func TestChannel_Wavelengths(t *testing.T) {
	ch := Channel{Name: "Ex_488_Em_525"}

	if ch.Excitation() != 488 {
		t.Errorf("expected excitation 488, got %d", ch.Excitation())
	}
	if ch.Emission() != 525 {
		t.Errorf("expected emission 525, got %d", ch.Emission())
	}
}

func TestChannel_Wavelengths_InvalidName(t *testing.T) {
	ch := Channel{Name: "fusion_488"}

	if ch.Excitation() != 0 {
		t.Errorf("expected 0 for invalid name, got %d", ch.Excitation())
	}
	if ch.Emission() != 0 {
		t.Errorf("expected 0 for invalid name, got %d", ch.Emission())
	}
}

func TestIsValidChannelName(t *testing.T) {
	valid := []string{"Ex_488_Em_525", "Ex_561_Em_600", "Ex_639_Em_680"}
	for _, name := range valid {
		if !IsValidChannelName(name) {
			t.Errorf("%q should be valid", name)
		}
	}

	invalid := []string{"", "Ex_488", "Ex_48_Em_525", "ex_488_em_525", "Ex_488_Em_525.zarr"}
	for _, name := range invalid {
		if IsValidChannelName(name) {
			t.Errorf("%q should be invalid", name)
		}
	}
}

func TestSortChannels(t *testing.T) {
	channels := []Channel{
		{Name: "Ex_639_Em_680"},
		{Name: "Ex_445_Em_469"},
		{Name: "Ex_561_Em_600"},
	}

	SortChannels(channels)

	want := []string{"Ex_445_Em_469", "Ex_561_Em_600", "Ex_639_Em_680"}
	for i, name := range want {
		if channels[i].Name != name {
			t.Errorf("position %d: expected %s, got %s", i, name, channels[i].Name)
		}
	}
}

func TestDispatchResult_SortAndSummary(t *testing.T) {
	result := &DispatchResult{
		Dataset: "SmartSPIM_000001",
		Handles: []RunHandle{
			{Channel: "Ex_561_Em_600", RunID: "run-2"},
			{Channel: "Ex_488_Em_525", RunID: "run-1"},
		},
		Failed: []ChannelError{
			{Channel: "Ex_639_Em_680", Err: ErrInvalidMode},
		},
	}

	result.Sort()

	if result.Handles[0].Channel != "Ex_488_Em_525" {
		t.Errorf("handles not sorted: %v", result.Handles)
	}
	if result.Ok() {
		t.Error("result with failures should not be Ok")
	}
	if got := result.FailedChannels(); len(got) != 1 || got[0] != "Ex_639_Em_680" {
		t.Errorf("unexpected failed channels: %v", got)
	}
}
