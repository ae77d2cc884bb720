package config

// ParseReset builds a typed reset controller config from a generic node
// tree (the value of the document's `reset:` key). Same contract as
// ParseClock: errors accumulate on diag, first declaration wins for
// duplicate target names.
func ParseReset(node map[string]interface{}, diag *Diagnostics) *ResetConfig {
	cfg := &ResetConfig{
		Name:   nodeString(node, "name"),
		TestEn: nodeString(node, "test_en"),
	}
	if cfg.Name == "" {
		diag.Errorf("reset controller: missing required field 'name'")
	}

	for i, v := range nodeList(node, "sources") {
		m, ok := asMap(v)
		if !ok {
			diag.Errorf("reset controller: source %d is not a map", i)
			continue
		}
		src := ResetSource{Name: nodeString(m, "name")}
		if src.Name == "" {
			diag.Errorf("reset controller: source %d: missing required field 'name'", i)
			continue
		}
		level, ok := parseLevel(m)
		if !ok {
			diag.Errorf("reset source %q: missing or invalid active level (want high or low)", src.Name)
			continue
		}
		src.Level = level
		cfg.Sources = append(cfg.Sources, src)
	}
	if len(cfg.Sources) == 0 {
		diag.Errorf("reset controller %q: empty source list", cfg.Name)
	}

	seen := map[string]bool{}
	for i, v := range nodeList(node, "targets") {
		m, ok := asMap(v)
		if !ok {
			diag.Errorf("reset controller: target %d is not a map", i)
			continue
		}
		t := parseResetTarget(m, diag)
		if t.Name == "" {
			diag.Errorf("reset controller: target %d: missing required field 'name'", i)
			continue
		}
		if seen[t.Name] {
			diag.Warnf("reset controller %q: duplicate target %q ignored", cfg.Name, t.Name)
			continue
		}
		seen[t.Name] = true
		cfg.Targets = append(cfg.Targets, t)
	}
	if len(cfg.Targets) == 0 {
		diag.Errorf("reset controller %q: empty target list", cfg.Name)
	}

	cfg.Reason = parseReason(node, cfg, diag)
	return cfg
}

func parseLevel(m map[string]interface{}) (ActiveLevel, bool) {
	switch nodeString(m, "level") {
	case "high":
		return ActiveHigh, true
	case "low":
		return ActiveLow, true
	}
	return ActiveLow, false
}

func parseResetTarget(m map[string]interface{}, diag *Diagnostics) ResetTarget {
	t := ResetTarget{Name: nodeString(m, "name")}
	level, ok := parseLevel(m)
	if !ok {
		diag.Errorf("reset target %q: missing or invalid active level (want high or low)", t.Name)
	}
	t.Level = level

	t.Stage = parseResetStage(m, diag, "reset target "+t.Name)

	for i, v := range nodeList(m, "links") {
		lm, ok := asMap(v)
		if !ok {
			diag.Errorf("reset target %q: link %d is not a map", t.Name, i)
			continue
		}
		link := ResetLink{Source: nodeString(lm, "source")}
		if link.Source == "" {
			diag.Errorf("reset target %q: link %d: missing required field 'source'", t.Name, i)
			continue
		}
		link.Stage = parseResetStage(lm, diag, "reset target "+t.Name+" link "+link.Source)
		t.Links = append(t.Links, link)
	}
	return t
}

// parseResetStage reads the async/sync/count block off a link or target
// node. At most one of the three may be present.
func parseResetStage(m map[string]interface{}, diag *Diagnostics, where string) *ResetStage {
	var stage *ResetStage
	add := func(kind StageKind, sm map[string]interface{}, sizeKey string, sizeDef int) {
		if stage != nil {
			diag.Errorf("%s: more than one of async/sync/count declared", where)
			return
		}
		s := &ResetStage{
			Kind:  kind,
			Clock: nodeString(sm, "clk"),
			Size:  nodeInt(sm, sizeKey, sizeDef),
		}
		if s.Clock == "" {
			diag.Errorf("%s: %s stage missing required field 'clk'", where, kind)
			return
		}
		if s.Size < 1 {
			diag.Errorf("%s: %s stage has non-positive %s %d", where, kind, sizeKey, s.Size)
			return
		}
		stage = s
	}
	if sm, ok := nodeMap(m, "async"); ok {
		add(StageAsync, sm, "stage", DefaultAsyncStage)
	}
	if sm, ok := nodeMap(m, "sync"); ok {
		add(StageSync, sm, "stage", DefaultSyncStage)
	}
	if sm, ok := nodeMap(m, "count"); ok {
		add(StageCount, sm, "cycle", DefaultCountCycle)
	}
	return stage
}

func parseReason(node map[string]interface{}, cfg *ResetConfig, diag *Diagnostics) *ReasonConfig {
	rm, ok := nodeMap(node, "reason")
	if !ok {
		return nil
	}
	if !nodeBool(rm, "enable", true) {
		return nil
	}
	r := &ReasonConfig{
		Clock:  nodeString(rm, "clk"),
		Output: nodeString(rm, "output"),
		Valid:  nodeString(rm, "valid"),
		Clear:  nodeString(rm, "clear"),
		Root:   nodeString(rm, "root"),
	}
	if r.Clock == "" {
		r.Clock = DefaultReasonClock
	}
	if r.Output == "" {
		r.Output = DefaultReasonOut
	}
	if r.Valid == "" {
		// Accept the older key; `valid` wins when both are present.
		r.Valid = nodeString(rm, "valid_signal")
	}
	if r.Valid == "" {
		r.Valid = DefaultReasonValid
	}
	if r.Clear == "" {
		r.Clear = DefaultReasonClear
	}
	// The reason outputs share the port namespace with the reset targets;
	// a collision would declare the same output twice.
	for _, t := range cfg.Targets {
		if t.Name == r.Output {
			diag.Errorf("reason recorder: output %q collides with a reset target name", r.Output)
		}
		if t.Name == r.Valid {
			diag.Errorf("reason recorder: valid %q collides with a reset target name", r.Valid)
		}
	}
	if r.Root == "" {
		diag.Errorf("reason recorder: missing required field 'root'")
		return r
	}
	if _, ok := cfg.SourceLevel(r.Root); !ok {
		diag.Errorf("reason recorder: root reset %q is not a declared source", r.Root)
		return r
	}
	for _, s := range cfg.Sources {
		if s.Name != r.Root {
			r.Sources = append(r.Sources, s.Name)
		}
	}
	return r
}
