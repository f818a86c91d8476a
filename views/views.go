// Package views holds the default Drakkar templates. They are written as
// templ components and wired into the engine through Default.
package views

import "github.com/drakkar-agro/drakkar"

// Default returns the view set used by the drakkar command.
func Default() drakkar.ViewFuncs {
	return drakkar.ViewFuncs{
		Front:        Front,
		Archive:      Archive,
		Post:         Post,
		Page:         Page,
		ContactReply: ContactReply,
		NotFound:     NotFound,
		ServerError:  ServerError,

		AdminLogin:      AdminLogin,
		AdminDashboard:  AdminDashboard,
		AdminPostForm:   AdminPostForm,
		AdminPageForm:   AdminPageForm,
		AdminCategories: AdminCategories,
		AdminOptions:    AdminOptions,
		AdminMenus:      AdminMenus,
		AdminImages:     AdminImages,
	}
}
