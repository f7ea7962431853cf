package core

import (
	"bytes"
	"encoding/base64"
	"fmt"
	htmltmpl "html/template"
	"io"
	"io/fs"
	"net/http"
	"net/mail"
	"path"
	"strings"
	"sync"
	texttmpl "text/template"

	"github.com/pkg/errors"
)

// Email template extensions
const (
	TextExt = ".txt"
	HTMLExt = ".gohtml"
)

var (
	templates   = make(tmplCache)
	templatesMu sync.RWMutex
)

type (
	// executor is satisfied by both *text/template.Template and *html/template.Template.
	executor interface {
		Execute(w io.Writer, data interface{}) error
	}

	tmplCache map[string]map[string]executor // {name: {ext: template}}

	Attachment struct {
		Content     *bytes.Buffer // base64 encoded
		ContentType string
		Filename    string
	}

	EmailMessage struct {
		To          []mail.Address
		Cc          []mail.Address
		Bcc         []mail.Address
		Subject     string
		Attachments []Attachment

		// TemplateName (without ext) is rendered with TemplateData into TextContent and HTMLContent.
		TemplateName string
		TemplateData interface{}
		TextContent  string
		HTMLContent  string
	}

	// ContextData is what email templates are executed with; .Data holds the message's TemplateData.
	ContextData struct {
		AppName         string
		FrontendBaseURL string
		Data            interface{}
	}

	// EmailService is any service that can send emails
	EmailService interface {
		// SendMessages sends messages concurrently
		SendMessages(messages ...*EmailMessage)
	}
)

func lookupTemplate(name, ext string) (executor, bool) {
	templatesMu.RLock()
	defer templatesMu.RUnlock()
	tmpl, ok := templates[name][ext]
	return tmpl, ok
}

// Render executes the message's templates. Missing templates leave the matching content untouched.
func (m *EmailMessage) Render(conf *Config) error {
	if m.TemplateName == "" {
		return nil
	}
	data := ContextData{
		AppName:         conf.AppName,
		FrontendBaseURL: conf.FrontendBaseURL,
		Data:            m.TemplateData,
	}

	for ext, content := range map[string]*string{TextExt: &m.TextContent, HTMLExt: &m.HTMLContent} {
		tmpl, ok := lookupTemplate(m.TemplateName, ext)
		if !ok {
			continue
		}
		var buf bytes.Buffer
		if err := tmpl.Execute(&buf, data); err != nil {
			return errors.Wrapf(err, "rendering %s%s", m.TemplateName, ext)
		}
		*content = buf.String()
	}
	return nil
}

// Attach base64-encodes the content of r. The content type is sniffed unless given.
func (m *EmailMessage) Attach(r io.Reader, filename string, ct ...string) error {
	content, err := io.ReadAll(r)
	if err != nil {
		return errors.Wrap(err, "reading attachment")
	}

	at := Attachment{Filename: filename, Content: new(bytes.Buffer)}
	encoder := base64.NewEncoder(base64.StdEncoding, at.Content)
	if _, err = encoder.Write(content); err != nil {
		return err
	}
	if err = encoder.Close(); err != nil {
		return err
	}

	at.ContentType = http.DetectContentType(content)
	if len(ct) > 0 {
		at.ContentType = ct[0]
	}
	m.Attachments = append(m.Attachments, at)
	return nil
}

func (m *EmailMessage) HasRecipients() bool  { return len(m.To) > 0 }
func (m *EmailMessage) HasContent() bool     { return (m.TextContent != "") || (m.HTMLContent != "") }
func (m *EmailMessage) HasAttachments() bool { return len(m.Attachments) > 0 }

// Sendable reports whether the rendered message has somewhere to go and something to say.
func (m *EmailMessage) Sendable() bool {
	return m.HasRecipients() && (m.HasContent() || m.HasAttachments())
}

func parseTemplate(fsys fs.FS, base, file, ext string, strict bool) (executor, error) {
	if ext == TextExt {
		tmpl, err := texttmpl.ParseFS(fsys, base, file)
		if err != nil {
			return nil, err
		}
		if strict {
			tmpl = tmpl.Option("missingkey=error")
		}
		return tmpl, nil
	}

	tmpl, err := htmltmpl.ParseFS(fsys, base, file)
	if err != nil {
		return nil, err
	}
	if strict {
		tmpl = tmpl.Option("missingkey=error")
	}
	return tmpl, nil
}

// ParseEmailTemplates parses every email template found in fsys under dir and replaces the cache.
// Each template is parsed along with the _base layout of its extension.
func ParseEmailTemplates(fsys fs.FS, dir string, conf *Config) error {
	fps, err := fs.Glob(fsys, path.Join(dir, "*"))
	if err != nil {
		return errors.Wrap(err, "listing email templates")
	}

	cache := make(tmplCache)
	strict := conf.Debug || conf.TestMode
	for _, fp := range fps {
		fname := path.Base(fp)
		ext := path.Ext(fname)
		if strings.HasPrefix(fname, "_") || (ext != TextExt && ext != HTMLExt) {
			continue
		}

		tmpl, err := parseTemplate(fsys, path.Join(dir, "_base"+ext), fp, ext, strict)
		if err != nil {
			return fmt.Errorf("parsing email template %s: %w", fname, err)
		}
		name := strings.TrimSuffix(fname, ext)
		if cache[name] == nil {
			cache[name] = make(map[string]executor, 2)
		}
		cache[name][ext] = tmpl
	}

	templatesMu.Lock()
	templates = cache
	templatesMu.Unlock()
	return nil
}
