package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/ochairo/appshortcuts/internal/domain/entities"
)

type iconView struct {
	ResourceID string `json:"resource_id"`
	Path       string `json:"path,omitempty"`
}

type shortcutView struct {
	ID              string   `json:"id"`
	Activity        string   `json:"activity"`
	Target          string   `json:"target"`
	Action          string   `json:"action"`
	Data            string   `json:"data,omitempty"`
	Flags           string   `json:"flags"`
	ShortLabel      string   `json:"short_label,omitempty"`
	LongLabel       string   `json:"long_label,omitempty"`
	DisabledMessage string   `json:"disabled_message,omitempty"`
	Icon            iconView `json:"icon"`
}

type packageView struct {
	Package   string         `json:"package"`
	Shortcuts []shortcutView `json:"shortcuts"`
}

type failureView struct {
	Package string `json:"package"`
	Kind    string `json:"kind"`
	Error   string `json:"error"`
}

type reportView struct {
	RunID         string        `json:"run_id"`
	Packages      []packageView `json:"packages"`
	Failures      []failureView `json:"failures"`
	ShortcutCount int           `json:"shortcut_count"`
	DurationMS    int64         `json:"duration_ms"`
}

type sourceView struct {
	Package string `json:"package"`
	Type    string `json:"type"`
	Path    string `json:"path"`
}

type integrityView struct {
	Path              string `json:"path"`
	SHA256            string `json:"sha256"`
	ChecksumFile      string `json:"checksum_file,omitempty"`
	ChecksumVerified  bool   `json:"checksum_verified"`
	SignatureFile     string `json:"signature_file,omitempty"`
	Signer            string `json:"signer,omitempty"`
	SignatureVerified bool   `json:"signature_verified"`
	Error             string `json:"error,omitempty"`
}

func newShortcutView(s entities.Shortcut) shortcutView {
	v := shortcutView{
		ID:              s.ID,
		Activity:        s.Activity.FlattenToString(),
		Target:          s.Intent.Component.FlattenToString(),
		Action:          s.Intent.Action,
		Flags:           fmt.Sprintf("0x%08x", uint32(s.Intent.Flags)),
		ShortLabel:      s.ShortLabel,
		LongLabel:       s.LongLabel,
		DisabledMessage: s.DisabledMessage,
		Icon:            iconView{ResourceID: s.Icon.ResourceID.String(), Path: s.Icon.Path},
	}
	if s.Intent.Data != nil {
		v.Data = s.Intent.Data.String()
	}
	return v
}

func newPackageView(pkg string, shortcuts []entities.Shortcut) packageView {
	v := packageView{Package: pkg, Shortcuts: make([]shortcutView, 0, len(shortcuts))}
	for _, s := range shortcuts {
		v.Shortcuts = append(v.Shortcuts, newShortcutView(s))
	}
	return v
}

func newReportView(r *entities.EnumerationReport) reportView {
	v := reportView{
		RunID:         r.RunID,
		Packages:      make([]packageView, 0, len(r.Packages)),
		Failures:      make([]failureView, 0, len(r.Failures)),
		ShortcutCount: r.ShortcutCount(),
		DurationMS:    r.Duration.Milliseconds(),
	}
	for _, p := range r.Packages {
		v.Packages = append(v.Packages, newPackageView(p.Package, p.Shortcuts))
	}
	for _, f := range r.Failures {
		v.Failures = append(v.Failures, failureView{Package: f.Package, Kind: string(f.Kind), Error: f.Err.Error()})
	}
	return v
}

func newIntegrityView(r *entities.IntegrityReport, err error) integrityView {
	v := integrityView{
		Path:              r.Path,
		SHA256:            r.Checksum,
		ChecksumFile:      r.ChecksumFile,
		ChecksumVerified:  r.ChecksumVerified,
		SignatureFile:     r.SignatureFile,
		Signer:            r.Signer,
		SignatureVerified: r.SignatureVerified,
	}
	if err != nil {
		v.Error = err.Error()
	}
	return v
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func plural(n int, word string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, word)
	}
	return fmt.Sprintf("%d %ss", n, word)
}

func detail(b *strings.Builder, key, value string) {
	if value == "" {
		return
	}
	fmt.Fprintf(b, "    %s%s\n", labelStyle.Render(key), value)
}

func renderPackage(w io.Writer, p packageView) {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s\n", TitleStyle.Render(p.Package), SubtitleStyle.Render("("+plural(len(p.Shortcuts), "shortcut")+")"))
	for _, s := range p.Shortcuts {
		fmt.Fprintf(&b, "  %s  %s\n", IDStyle.Render(s.ID), s.ShortLabel)
		detail(&b, "long", s.LongLabel)
		detail(&b, "disabled", s.DisabledMessage)
		detail(&b, "target", s.Target)
		detail(&b, "action", s.Action)
		detail(&b, "data", s.Data)
		detail(&b, "icon", s.Icon.Path)
		detail(&b, "from", s.Activity)
	}
	fmt.Fprint(w, b.String())
}

func renderReport(w io.Writer, r reportView) {
	for _, p := range r.Packages {
		renderPackage(w, p)
	}
	if len(r.Failures) > 0 {
		fmt.Fprintln(w, ErrorStyle.Render(plural(len(r.Failures), "package")+" failed:"))
		for _, f := range r.Failures {
			fmt.Fprintf(w, "  %s %s %s\n", f.Package, WarningStyle.Render("["+f.Kind+"]"), f.Error)
		}
	}
	fmt.Fprintln(w, SubtitleStyle.Render(fmt.Sprintf("%s in %s, %d failed (%dms)",
		plural(r.ShortcutCount, "shortcut"), plural(len(r.Packages), "package"), len(r.Failures), r.DurationMS)))
}

func renderSources(w io.Writer, sources []sourceView) {
	for _, s := range sources {
		fmt.Fprintf(w, "%-40s %-9s %s\n", s.Package, s.Type, SubtitleStyle.Render(s.Path))
	}
	fmt.Fprintln(w, SubtitleStyle.Render(plural(len(sources), "package")))
}

func renderIntegrity(w io.Writer, v integrityView) {
	fmt.Fprintln(w, TitleStyle.Render(v.Path))
	fmt.Fprintf(w, "  %s%s\n", labelStyle.Render("sha256"), v.SHA256)
	switch {
	case v.ChecksumVerified:
		fmt.Fprintf(w, "  %s%s\n", labelStyle.Render("checksum"), SuccessStyle.Render("verified against "+v.ChecksumFile))
	default:
		fmt.Fprintf(w, "  %s%s\n", labelStyle.Render("checksum"), SubtitleStyle.Render("not checked"))
	}
	switch {
	case v.SignatureVerified:
		fmt.Fprintf(w, "  %s%s\n", labelStyle.Render("signature"), SuccessStyle.Render("signed by "+v.Signer))
	case v.SignatureFile != "":
		fmt.Fprintf(w, "  %s%s\n", labelStyle.Render("signature"), ErrorStyle.Render("invalid ("+v.SignatureFile+")"))
	default:
		fmt.Fprintf(w, "  %s%s\n", labelStyle.Render("signature"), SubtitleStyle.Render("not checked"))
	}
}
