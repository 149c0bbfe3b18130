package httptransport

import (
	"strings"

	"github.com/asaskevich/govalidator"

	"cardlink/internal/card"
	dErrors "cardlink/pkg/domain-errors"
)

// ProfilePayload is the wire form of a profile. Every field is optional and
// individually validated; the payload never reaches a service as an untyped
// bag.
type ProfilePayload struct {
	Name        string            `json:"name"`
	Company     string            `json:"company"`
	Title       string            `json:"title"`
	Phone       string            `json:"phone"`
	Mobile      string            `json:"mobile"`
	Email       string            `json:"email"`
	EmailPublic string            `json:"email_public"`
	Website     string            `json:"website"`
	Address     string            `json:"address"`
	ImageURL    string            `json:"image_url"`
	Socials     map[string]string `json:"socials"`
}

type claimRequest struct {
	ClaimToken    string         `json:"claim_token"`
	Profile       ProfilePayload `json:"profile"`
	EmailForLogin string         `json:"email"`
}

type editRequest struct {
	Profile ProfilePayload `json:"profile"`
}

type recordEventRequest struct {
	UID  string `json:"uid"`
	Kind string `json:"kind"`
}

type provisionRequest struct {
	Count int `json:"count"`
}

func (r *claimRequest) Validate() error {
	if r.ClaimToken == "" {
		return dErrors.New(dErrors.CodeBadRequest, "claim_token is required")
	}
	if r.EmailForLogin != "" && !govalidator.IsEmail(r.EmailForLogin) {
		return dErrors.New(dErrors.CodeBadRequest, "invalid email")
	}
	return r.Profile.Validate()
}

// Validate checks each populated field; absent fields are fine.
func (p *ProfilePayload) Validate() error {
	if !govalidator.StringLength(p.Name, "0", "200") {
		return dErrors.New(dErrors.CodeBadRequest, "name too long")
	}
	for _, email := range []string{p.Email, p.EmailPublic} {
		if email != "" && !govalidator.IsEmail(email) {
			return dErrors.New(dErrors.CodeBadRequest, "invalid email")
		}
	}
	for _, url := range []string{p.Website, p.ImageURL} {
		if url != "" && !govalidator.IsURL(url) {
			return dErrors.New(dErrors.CodeBadRequest, "invalid url")
		}
	}
	for platform, link := range p.Socials {
		if strings.TrimSpace(platform) == "" {
			return dErrors.New(dErrors.CodeBadRequest, "socials contain empty platform")
		}
		if !govalidator.StringLength(link, "1", "500") {
			return dErrors.New(dErrors.CodeBadRequest, "invalid social link")
		}
	}
	return nil
}

// ToProfile converts the sanitized payload into the domain value object.
func (p *ProfilePayload) ToProfile() card.Profile {
	profile := card.Profile{
		Name:        strings.TrimSpace(p.Name),
		Company:     strings.TrimSpace(p.Company),
		Title:       strings.TrimSpace(p.Title),
		Phone:       strings.TrimSpace(p.Phone),
		Mobile:      strings.TrimSpace(p.Mobile),
		Email:       strings.TrimSpace(p.Email),
		EmailPublic: strings.TrimSpace(p.EmailPublic),
		Website:     strings.TrimSpace(p.Website),
		Address:     strings.TrimSpace(p.Address),
		ImageURL:    strings.TrimSpace(p.ImageURL),
	}
	if len(p.Socials) > 0 {
		profile.Socials = make(map[string]string, len(p.Socials))
		for platform, link := range p.Socials {
			profile.Socials[strings.ToLower(strings.TrimSpace(platform))] = strings.TrimSpace(link)
		}
	}
	return profile
}
