package bootstrap

import (
	goruntime "runtime"

	"github.com/wailsapp/wails/v2/pkg/menu"
	"github.com/wailsapp/wails/v2/pkg/menu/keys"

	"xliff-manager/internal/jobs"

	wailsruntime "github.com/wailsapp/wails/v2/pkg/runtime"
)

// Views the frontend can switch to.
const (
	ViewCreateXliff      = "show-createXliff"
	ViewMergeXliff       = "show-mergeXliff"
	ViewValidateXliff    = "show-validateXliff"
	ViewAnalyzeXliff     = "show-analyzeXliff"
	ViewTranslationTasks = "show-translationTasks"
	ViewPreferences      = "show-preferences"
)

const (
	releaseHistoryURL = "https://www.maxprograms.com/products/xliffmanagerlog.html"
	supportGroupURL   = "https://groups.io/g/maxprograms/"
	homePageURL       = "https://maxprograms.com/"
)

// viewShortcut binds a menu label key to a view and its accelerator digit.
type viewShortcut struct {
	label string
	view  string
	key   string
}

var viewShortcuts = []viewShortcut{
	{label: "createXliff", view: ViewCreateXliff, key: "1"},
	{label: "mergeXliff", view: ViewMergeXliff, key: "2"},
	{label: "validateXliff", view: ViewValidateXliff, key: "3"},
	{label: "analyseXliff", view: ViewAnalyzeXliff, key: "4"},
	{label: "translationTasks", view: ViewTranslationTasks, key: "5"},
}

// buildMenu creates the application menu bar in the startup language.
func (a *App) buildMenu() *menu.Menu {
	appMenu := menu.NewMenu()
	if goruntime.GOOS == "darwin" {
		appMenu.Append(menu.AppMenu())
	}

	file := appMenu.AddSubmenu(a.text("menu", "file"))
	file.AddText(a.text("menu", "preferences"), keys.CmdOrCtrl(","), func(_ *menu.CallbackData) {
		a.ShowView(ViewPreferences)
	})
	if goruntime.GOOS != "darwin" {
		file.AddSeparator()
		file.AddText(a.text("menu", "quit"), quitAccelerator(), func(_ *menu.CallbackData) {
			if ctx, err := a.runtimeContext(); err == nil {
				wailsruntime.Quit(ctx)
			}
		})
	}

	appMenu.Append(menu.EditMenu())

	view := appMenu.AddSubmenu(a.text("menu", "view"))
	for _, shortcut := range viewShortcuts {
		shortcut := shortcut
		view.AddText(a.text("menu", shortcut.label), keys.CmdOrCtrl(shortcut.key), func(_ *menu.CallbackData) {
			a.ShowView(shortcut.view)
		})
	}

	help := appMenu.AddSubmenu(a.text("menu", "help"))
	help.AddText(a.text("menu", "checkUpdates"), nil, func(_ *menu.CallbackData) {
		go a.CheckUpdates(false)
	})
	help.AddText(a.text("menu", "releaseHistory"), nil, func(_ *menu.CallbackData) {
		a.openURL(releaseHistoryURL)
	})
	help.AddSeparator()
	help.AddText(a.text("menu", "supportGroup"), nil, func(_ *menu.CallbackData) {
		a.openURL(supportGroupURL)
	})
	help.AddText(a.text("menu", "homePage"), nil, func(_ *menu.CallbackData) {
		a.openURL(homePageURL)
	})

	return appMenu
}

// ShowView asks the frontend to switch to view.
func (a *App) ShowView(view string) {
	a.publishEvent(jobs.Event{
		Type:    jobs.EventShowView,
		Payload: map[string]any{"view": view},
	})
}

func (a *App) openURL(url string) {
	ctx, err := a.runtimeContext()
	if err != nil {
		a.logger.Warn("open url", "url", url, "error", err)
		return
	}
	wailsruntime.BrowserOpenURL(ctx, url)
}

func quitAccelerator() *keys.Accelerator {
	if goruntime.GOOS == "windows" {
		return keys.OptionOrAlt("F4")
	}
	return keys.CmdOrCtrl("q")
}
