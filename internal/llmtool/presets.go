package llmtool

// PromptPreset holds reusable constraints and rules for structured prompts.
type PromptPreset struct {
	Constraints []string
	Rules       []string
}

// ApplyPresets prepends preset constraints/rules to a structured prompt spec.
func ApplyPresets(spec StructuredPromptSpec, presets ...PromptPreset) StructuredPromptSpec {
	if len(presets) == 0 {
		return spec
	}
	var merged PromptPreset
	for _, p := range presets {
		merged.Constraints = append(merged.Constraints, p.Constraints...)
		merged.Rules = append(merged.Rules, p.Rules...)
	}
	spec.Constraints = append(merged.Constraints, spec.Constraints...)
	spec.Rules = append(merged.Rules, spec.Rules...)
	return spec
}

// PresetShopVoice sets the tone for customer-facing replies.
func PresetShopVoice() PromptPreset {
	return PromptPreset{
		Rules: []string{
			"Be friendly, helpful and concise.",
			"Always answer in the same language the customer uses.",
		},
	}
}

// PresetPlainText keeps replies renderable in a plain chat bubble.
func PresetPlainText() PromptPreset {
	return PromptPreset{
		Constraints: []string{
			"Do not use markdown formatting such as **bold**, headings or tables.",
			"Use the • character for list bullets.",
			"Never return an empty reply.",
		},
	}
}

// PresetRupiah fixes how money is written.
func PresetRupiah() PromptPreset {
	return PromptPreset{
		Constraints: []string{
			"Write prices in rupiah as Rp XX.XXX with a period as the thousands separator.",
		},
	}
}

// PresetNoInvent prevents fabricated products and prices.
func PresetNoInvent() PromptPreset {
	return PromptPreset{
		Constraints: []string{
			"Do not invent products, prices, stock levels or order numbers; use only the provided data.",
		},
	}
}
