package view

import (
	"html/template"

	"github.com/ziadkadry99/simcheck/internal/api"
)

// IndexPage is the data of the analysis page. The panel fields hold
// content produced by the HTML renderer.
type IndexPage struct {
	User              *api.User
	Text              string
	CheckParaphrasing bool
	AnalyzeEnabled    bool
	Loading           bool
	ActiveTab         string
	MinLength         int
	Results           template.HTML
	Statistics        template.HTML
	History           template.HTML
}

// AuthPage is the data of the login and register pages.
type AuthPage struct {
	Error    string
	Username string
	Email    string
}
