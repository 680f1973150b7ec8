// Copyright 2026 The Matrix SDK Go Authors
// SPDX-License-Identifier: Apache-2.0

package slidingsync

// ToDeviceConfig toggles the to-device message extension. Since is
// the resumption token for the to-device stream; bootstrap injects a
// persisted token here, but only when the extension was explicitly
// configured.
type ToDeviceConfig struct {
	Enabled *bool  `cbor:"enabled,omitempty" json:"enabled,omitempty"`
	Since   string `cbor:"since,omitempty" json:"since,omitempty"`
}

// E2EEConfig toggles the end-to-end encryption extension.
type E2EEConfig struct {
	Enabled *bool `cbor:"enabled,omitempty" json:"enabled,omitempty"`
}

// AccountDataConfig toggles the account-data extension.
type AccountDataConfig struct {
	Enabled *bool `cbor:"enabled,omitempty" json:"enabled,omitempty"`
}

// TypingConfig toggles the typing-notification extension.
type TypingConfig struct {
	Enabled *bool `cbor:"enabled,omitempty" json:"enabled,omitempty"`
}

// ReceiptsConfig toggles the read-receipt extension.
type ReceiptsConfig struct {
	Enabled *bool `cbor:"enabled,omitempty" json:"enabled,omitempty"`
}

// ExtensionsConfig holds the per-session extension toggles. A nil
// member means the extension is absent: the server never hears about
// it, and bootstrap will not resurrect it from a snapshot.
type ExtensionsConfig struct {
	ToDevice    *ToDeviceConfig    `cbor:"to_device,omitempty" json:"to_device,omitempty"`
	E2EE        *E2EEConfig        `cbor:"e2ee,omitempty" json:"e2ee,omitempty"`
	AccountData *AccountDataConfig `cbor:"account_data,omitempty" json:"account_data,omitempty"`
	Typing      *TypingConfig      `cbor:"typing,omitempty" json:"typing,omitempty"`
	Receipts    *ReceiptsConfig    `cbor:"receipts,omitempty" json:"receipts,omitempty"`
}

func enabled() *bool {
	value := true
	return &value
}

// mergeCommonExtensions enables the to-device, E2EE, and account-data
// extensions where they are absent. Members that were configured
// explicitly are left untouched, whatever their contents.
func (c *ExtensionsConfig) mergeCommonExtensions() {
	if c.ToDevice == nil {
		c.ToDevice = &ToDeviceConfig{Enabled: enabled()}
	}
	if c.E2EE == nil {
		c.E2EE = &E2EEConfig{Enabled: enabled()}
	}
	if c.AccountData == nil {
		c.AccountData = &AccountDataConfig{Enabled: enabled()}
	}
}

// mergeAllExtensions enables every absent extension: the common set
// plus typing and receipts.
func (c *ExtensionsConfig) mergeAllExtensions() {
	c.mergeCommonExtensions()
	if c.Typing == nil {
		c.Typing = &TypingConfig{Enabled: enabled()}
	}
	if c.Receipts == nil {
		c.Receipts = &ReceiptsConfig{Enabled: enabled()}
	}
}

// clone returns a deep copy so the live session cannot alias builder
// state.
func (c *ExtensionsConfig) clone() ExtensionsConfig {
	var out ExtensionsConfig
	if c.ToDevice != nil {
		copied := *c.ToDevice
		out.ToDevice = &copied
	}
	if c.E2EE != nil {
		copied := *c.E2EE
		out.E2EE = &copied
	}
	if c.AccountData != nil {
		copied := *c.AccountData
		out.AccountData = &copied
	}
	if c.Typing != nil {
		copied := *c.Typing
		out.Typing = &copied
	}
	if c.Receipts != nil {
		copied := *c.Receipts
		out.Receipts = &copied
	}
	return out
}
