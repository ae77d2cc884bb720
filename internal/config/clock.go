package config

// ParseClock builds a typed clock controller config from a generic node
// tree (the value of the document's `clock:` key). Problems are recorded on
// diag; the returned config is only usable when diag.OK() holds. Parsing
// continues past errors so one run reports everything it can.
func ParseClock(node map[string]interface{}, diag *Diagnostics) *ClockConfig {
	cfg := &ClockConfig{
		Name:   nodeString(node, "name"),
		TestEn: nodeString(node, "test_en"),
		RefClk: nodeString(node, "ref_clk"),
	}
	if cfg.Name == "" {
		diag.Errorf("clock controller: missing required field 'name'")
	}

	for i, v := range nodeList(node, "inputs") {
		m, ok := asMap(v)
		if !ok {
			diag.Errorf("clock controller: input %d is not a map", i)
			continue
		}
		in := ClockInput{
			Name: nodeString(m, "name"),
			Freq: nodeString(m, "freq"),
			Duty: nodeString(m, "duty"),
		}
		if in.Name == "" {
			diag.Errorf("clock controller: input %d: missing required field 'name'", i)
			continue
		}
		cfg.Inputs = append(cfg.Inputs, in)
	}
	if len(cfg.Inputs) == 0 {
		diag.Errorf("clock controller %q: empty input list", cfg.Name)
	}

	seen := map[string]bool{}
	for i, v := range nodeList(node, "targets") {
		m, ok := asMap(v)
		if !ok {
			diag.Errorf("clock controller: target %d is not a map", i)
			continue
		}
		t := parseClockTarget(m, cfg.TestEn, diag)
		if t.Name == "" {
			diag.Errorf("clock controller: target %d: missing required field 'name'", i)
			continue
		}
		if seen[t.Name] {
			// First declaration wins.
			diag.Warnf("clock controller %q: duplicate target %q ignored", cfg.Name, t.Name)
			continue
		}
		seen[t.Name] = true
		cfg.Targets = append(cfg.Targets, t)
	}
	if len(cfg.Targets) == 0 {
		diag.Errorf("clock controller %q: empty target list", cfg.Name)
	}
	return cfg
}

func parseClockTarget(m map[string]interface{}, testEn string, diag *Diagnostics) ClockTarget {
	t := ClockTarget{
		Name:    nodeString(m, "name"),
		Freq:    nodeString(m, "freq"),
		Select:  nodeString(m, "select"),
		Reset:   nodeString(m, "rst"),
		TestClk: nodeString(m, "test_clk"),
		ICG:     parseICG(m, testEn, diag, "target "+nodeString(m, "name")),
		Div:     parseDivider(m, diag, "target "+nodeString(m, "name")),
		Inv:     parseInverter(m),
	}
	if mm, ok := nodeMap(m, "mux"); ok {
		t.Mux.Sta = parseSta(mm)
		if kind := nodeString(mm, "kind"); kind != "" {
			switch kind {
			case "GF_MUX":
				t.Mux.Kind, t.Mux.KindSet = MuxGlitchFree, true
			case "STD_MUX":
				t.Mux.Kind, t.Mux.KindSet = MuxStd, true
			default:
				diag.Errorf("target %q: invalid mux kind %q (want GF_MUX or STD_MUX)", t.Name, kind)
			}
		}
	}

	for i, v := range nodeList(m, "links") {
		lm, ok := asMap(v)
		if !ok {
			diag.Errorf("target %q: link %d is not a map", t.Name, i)
			continue
		}
		link := ClockLink{
			Source: nodeString(lm, "source"),
			ICG:    parseICG(lm, testEn, diag, "target "+t.Name+" link"),
			Div:    parseDivider(lm, diag, "target "+t.Name+" link"),
			Inv:    parseInverter(lm),
		}
		if link.Source == "" {
			diag.Errorf("target %q: link %d: missing required field 'source'", t.Name, i)
			continue
		}
		t.Links = append(t.Links, link)
	}

	if len(t.Links) > 1 && t.Select == "" {
		diag.Errorf("target %q: %d links but no select signal", t.Name, len(t.Links))
	}
	return t
}

func parseICG(m map[string]interface{}, testEn string, diag *Diagnostics, where string) *ICGConfig {
	im, ok := nodeMap(m, "icg")
	if !ok {
		return nil
	}
	icg := &ICGConfig{
		Enable:           nodeString(im, "en"),
		TestEn:           testEn,
		Reset:            nodeString(im, "rst"),
		ClockDuringReset: nodeBool(im, "clock_during_reset", false),
		Sta:              parseSta(im),
	}
	switch nodeString(im, "polarity") {
	case "", "high":
		icg.Polarity = PolarityHigh
	case "low":
		icg.Polarity = PolarityLow
	default:
		diag.Errorf("%s: invalid icg polarity %q (want high or low)", where, nodeString(im, "polarity"))
	}
	return icg
}

func parseDivider(m map[string]interface{}, diag *Diagnostics, where string) *DividerConfig {
	dm, ok := nodeMap(m, "div")
	if !ok {
		return nil
	}
	d := &DividerConfig{
		Default:          nodeInt(dm, "default", DefaultDivideValue),
		Width:            nodeInt(dm, "width", 0),
		ClockDuringReset: nodeBool(dm, "clock_during_reset", false),
		Reset:            nodeString(dm, "rst"),
		Enable:           nodeString(dm, "en"),
		Value:            nodeString(dm, "value"),
		Valid:            nodeString(dm, "valid"),
		Ready:            nodeString(dm, "ready"),
		Count:            nodeString(dm, "count"),
		Sta:              parseSta(dm),
	}
	if d.Width > 0 && d.Default > (1<<uint(d.Width))-1 {
		diag.Warnf("%s: divider default %d does not fit in %d bits", where, d.Default, d.Width)
	}
	// Without a valid strobe the self-synchronizing divider variant is
	// selected, and it has no ready pin to drive the signal.
	if d.Dynamic() && d.Valid == "" && d.Ready != "" {
		diag.Warnf("%s: divider ready %q dropped: no valid strobe, so the self-synchronizing variant is used and it has no ready pin", where, d.Ready)
		d.Ready = ""
	}
	return d
}

// parseInverter accepts both the map form (`inv: {}`) and the legacy
// boolean form (`inv: true`); the two are equivalent.
func parseInverter(m map[string]interface{}) *InverterConfig {
	v, ok := m["inv"]
	if !ok || v == nil {
		// Bare `inv:` in YAML decodes to nil; treat as enabled with no guide.
		if _, present := m["inv"]; present {
			return &InverterConfig{}
		}
		return nil
	}
	switch s := v.(type) {
	case bool:
		if s {
			return &InverterConfig{}
		}
		return nil
	case map[string]interface{}:
		return &InverterConfig{Sta: parseSta(s)}
	}
	return nil
}

func parseSta(m map[string]interface{}) StaGuide {
	sm, ok := nodeMap(m, "sta")
	if !ok {
		return StaGuide{}
	}
	return StaGuide{
		Cell: nodeString(sm, "cell"),
		In:   nodeString(sm, "in"),
		Out:  nodeString(sm, "out"),
		Inst: nodeString(sm, "inst"),
	}
}
