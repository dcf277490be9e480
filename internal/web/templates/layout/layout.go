package layout

import "github.com/mcoot/clashoffists/internal/model"

//go:generate templ generate

// FlashMessage is a one-shot notice carried across a redirect
type FlashMessage struct {
	// Type is a Bootstrap alert variant: success, danger, info, warning
	Type    string
	Message string
}

// PageData is shared by every full page
type PageData struct {
	Title string
	User  *model.User
	Flash *FlashMessage
}

func pageTitle(title string) string {
	if title == "" {
		return "Clash of Fists"
	}
	return title + " | Clash of Fists"
}

func alertVariant(t string) string {
	switch t {
	case "success", "danger", "info", "warning":
		return t
	case "error":
		return "danger"
	default:
		return "info"
	}
}
