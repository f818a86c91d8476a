package drakkar

import (
	"errors"
	"html/template"
	"net/http"
	"regexp"
	"sort"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

var phonePattern = regexp.MustCompile(`^[0-9+() .-]{8,20}$`)

// Validate checks a contact submission.
func (m ContactMessage) Validate() error {
	return validation.ValidateStruct(&m,
		validation.Field(&m.Name, validation.Required, validation.Length(2, 100)),
		validation.Field(&m.Email, validation.Required, is.EmailFormat),
		validation.Field(&m.Phone, validation.Match(phonePattern)),
		validation.Field(&m.Company, validation.Length(0, 100)),
		validation.Field(&m.Message, validation.Required, validation.Length(10, 5000)),
	)
}

// fieldErrors flattens ozzo validation errors into field -> message.
func fieldErrors(err error) map[string]string {
	out := map[string]string{}
	var verrs validation.Errors
	if errors.As(err, &verrs) {
		for field, e := range verrs {
			out[field] = e.Error()
		}
		return out
	}
	out["form"] = err.Error()
	return out
}

// handleContact stores a contact form submission. HTMX requests get the
// reply fragment; plain form posts are redirected back to the page.
func (a *App) handleContact(c echo.Context) error {
	msg := ContactMessage{
		Name:    strings.TrimSpace(c.FormValue("name")),
		Email:   strings.TrimSpace(c.FormValue("email")),
		Phone:   strings.TrimSpace(c.FormValue("phone")),
		Company: strings.TrimSpace(c.FormValue("company")),
		Message: strings.TrimSpace(c.FormValue("message")),
		Page:    contactReturnPath(c.FormValue("page")),
	}
	htmx := c.Request().Header.Get("HX-Request") == "true"

	// Bots fill the hidden field; pretend success.
	if c.FormValue("website") != "" {
		return a.contactReply(c, htmx, msg.Page, ContactResult{Sent: true})
	}

	if !a.contactLimiter.Check(c.RealIP()) {
		return c.String(http.StatusTooManyRequests, "Too many messages. Try again later.")
	}

	if err := msg.Validate(); err != nil {
		result := ContactResult{Errors: fieldErrors(err), Values: msg}
		if htmx {
			return RenderStatus(c, http.StatusUnprocessableEntity, a.Views.ContactReply(result))
		}
		return c.Redirect(http.StatusSeeOther, msg.Page+"?contact=invalid#contact")
	}

	msg.ID = uuid.NewString()
	msg.CreatedAt = time.Now().UTC().Format(time.RFC3339)
	if err := a.Store.SaveContactMessage(msg); err != nil {
		return err
	}
	a.contactLimiter.Record(c.RealIP())
	c.Logger().Infof("contact message %s from %s", msg.ID, msg.Email)
	return a.contactReply(c, htmx, msg.Page, ContactResult{Sent: true})
}

func (a *App) contactReply(c echo.Context, htmx bool, page string, r ContactResult) error {
	if htmx {
		return Render(c, a.Views.ContactReply(r))
	}
	return c.Redirect(http.StatusSeeOther, page+"?contact=sent#contact")
}

// contactReturnPath keeps redirects on this site.
func contactReturnPath(p string) string {
	if !strings.HasPrefix(p, "/") || strings.HasPrefix(p, "//") || strings.ContainsAny(p, "\\\r\n") {
		return "/"
	}
	if i := strings.IndexAny(p, "?#"); i >= 0 {
		p = p[:i]
	}
	return p
}

// contactFormShortcode renders [contact_form] for the page at path.
func contactFormShortcode(csrfToken, path string) func(map[string]string) template.HTML {
	return func(attrs map[string]string) template.HTML {
		title := attrs["title"]
		if title == "" {
			title = "Get in touch"
		}
		button := attrs["button"]
		if button == "" {
			button = "Send message"
		}
		esc := template.HTMLEscapeString
		var b strings.Builder
		b.WriteString(`<section class="contact-form" id="contact"><h2 class="contact-form__title">` + esc(title) + `</h2>`)
		b.WriteString(`<form class="contact-form__form" method="post" action="/contact/" hx-post="/contact/" hx-target="#contact-reply" hx-swap="innerHTML" novalidate>`)
		b.WriteString(`<input type="hidden" name="_csrf" value="` + esc(csrfToken) + `">`)
		b.WriteString(`<input type="hidden" name="page" value="` + esc(path) + `">`)
		b.WriteString(`<div class="contact-form__hp" aria-hidden="true"><input type="text" name="website" tabindex="-1" autocomplete="off"></div>`)
		field := func(name, label, typ string, required bool) {
			req := ""
			if required {
				req = " required"
			}
			b.WriteString(`<p class="contact-form__field"><label for="contact-` + name + `">` + label + `</label>`)
			b.WriteString(`<input id="contact-` + name + `" type="` + typ + `" name="` + name + `"` + req + `></p>`)
		}
		field("name", "Name", "text", true)
		field("email", "Email", "email", true)
		field("phone", "Phone", "tel", false)
		field("company", "Company", "text", false)
		b.WriteString(`<p class="contact-form__field"><label for="contact-message">Message</label><textarea id="contact-message" name="message" rows="5" required></textarea></p>`)
		b.WriteString(`<button type="submit" class="button button--primary">` + esc(button) + `</button>`)
		b.WriteString(`</form><div id="contact-reply" class="contact-form__reply" aria-live="polite"></div></section>`)
		return template.HTML(b.String())
	}
}

// statisticsShortcode renders [statistics label="number" ...] as animated
// counters. Labels use underscores for spaces.
func statisticsShortcode(attrs map[string]string) template.HTML {
	labels := make([]string, 0, len(attrs))
	for k := range attrs {
		labels = append(labels, k)
	}
	sort.Strings(labels)
	esc := template.HTMLEscapeString
	var b strings.Builder
	b.WriteString(`<section class="statistics" data-statistics>`)
	for _, l := range labels {
		b.WriteString(`<div class="statistics__item"><span class="statistics__number" data-count="` + esc(attrs[l]) + `">` + esc(attrs[l]) + `</span>`)
		b.WriteString(`<span class="statistics__label">` + esc(strings.ReplaceAll(l, "_", " ")) + `</span></div>`)
	}
	b.WriteString(`</section>`)
	return template.HTML(b.String())
}
