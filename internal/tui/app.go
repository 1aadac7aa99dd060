package tui

import (
	"context"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/mmcdole/anbar/internal/domain"
	"github.com/mmcdole/anbar/internal/tui/components"
	"github.com/mmcdole/anbar/internal/tui/styles"
	"github.com/shopspring/decimal"
)

// Screen is one tab of the bottom navigation
type Screen int

const (
	ScreenHome Screen = iota
	ScreenSearch
	ScreenLowStock
	ScreenBrands
	ScreenCategories
)

var screenTabs = []string{"خانه", "جستجو", "کم موجودی", "برندها", "دسته‌بندی‌ها"}

// Empty state texts
const (
	noSearchTitle  = "جستجوی کالا"
	noSearchBody   = "برای یافتن کالا، نام، کد سفارشی یا توضیحات آن را وارد کنید"
	noResultsTitle = "نتیجه‌ای یافت نشد"
	noResultsBody  = "هیچ کالایی با این مشخصات پیدا نشد. لطفا عبارت دیگری را جستجو کنید"
	noLowStockBody = "همه کالاها موجودی کافی دارند"
	noBrandsText   = "برندی ثبت نشده است"
	noCategories   = "دسته‌بندی‌ای ثبت نشده است"
	noSubcategory  = "زیردسته‌ای ثبت نشده است"
	allItemsPrefix = "همه کالاهای "
)

const statusDuration = 3 * time.Second

// Catalog is what the screens need from the catalog service
type Catalog interface {
	Stats(ctx context.Context) (*domain.Stats, error)
	LowStock(ctx context.Context) ([]domain.Item, error)
	Brands(ctx context.Context) ([]domain.Brand, error)
	ItemsByBrand(ctx context.Context, brandID int64) ([]domain.Item, error)
	Categories(ctx context.Context) ([]domain.Category, error)
	Subcategories(ctx context.Context, categoryID int64) ([]domain.Subcategory, error)
	ItemsByCategory(ctx context.Context, categoryID int64) ([]domain.Item, error)
	ItemsBySubcategory(ctx context.Context, subcategoryID int64) ([]domain.Item, error)
	MeasureTypes(ctx context.Context) ([]domain.MeasureType, error)
	Item(ctx context.Context, id int64) (*domain.Item, error)
	UpdateStock(ctx context.Context, id int64, available float64) error
	Refresh()
	RefreshCategory(categoryID int64)
}

// Searcher is the search orchestrator as seen by the search screen
type Searcher interface {
	State() domain.SearchState
	Subscribe(obs domain.SearchObserver) func()
	SetQuery(text string)
	Search()
	Clear()
	Close()
}

// URLLauncher opens item media externally
type URLLauncher interface {
	Launch(url string) error
}

// Options wires a Model to its collaborators
type Options struct {
	Catalog  Catalog
	Search   Searcher
	Launcher URLLauncher
	APIBase  string // used to build image URLs
	Logger   *slog.Logger
}

// Model is the main Bubble Tea model for the application
type Model struct {
	catalog  Catalog
	search   Searcher
	launcher URLLauncher
	apiBase  string
	logger   *slog.Logger

	screen Screen
	ready  bool
	width  int
	height int

	// Home
	stats        *domain.Stats
	statsLoading bool

	// Search
	searchBox     components.SearchBox
	searchResults components.ItemList
	searchState   domain.SearchState
	searchCh      chan domain.SearchState
	unsubscribe   func()

	// Low stock
	lowStock        components.ItemList
	lowStockLoading bool
	lowStockLoaded  bool
	measureTypes    []domain.MeasureType

	// Brands
	brands            components.NameList
	brandsLoading     bool
	brandsLoaded      bool
	brand             *domain.Brand
	brandItems        components.ItemList
	brandItemsLoading bool

	// Categories: category list, then its subcategories, then items
	categories           components.NameList
	categoriesLoading    bool
	categoriesLoaded     bool
	category             *domain.Category
	subcategories        components.NameList
	subcategoriesLoading bool
	subcategory          *components.Entry // ID 0 lists the whole category
	categoryItems        components.ItemList
	categoryItemsLoading bool

	// Item detail, shown over the current screen
	detail        *domain.Item
	detailLoading bool
	stockModal    components.InputModal

	spinner     spinner.Model
	status      string
	statusIsErr bool
	statusSeq   int
}

// NewModel creates the root model and subscribes it to search updates
func NewModel(opts Options) Model {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = styles.SpinnerStyle

	searchResults := components.NewItemList(noResultsTitle, noResultsBody)
	searchResults.SetFocused(false)

	m := Model{
		catalog:       opts.Catalog,
		search:        opts.Search,
		launcher:      opts.Launcher,
		apiBase:       opts.APIBase,
		logger:        opts.Logger,
		searchBox:     components.NewSearchBox(),
		searchResults: searchResults,
		lowStock:      components.NewItemList(noResultsTitle, noLowStockBody),
		brands:        components.NewNameList(noBrandsText),
		brandItems:    components.NewItemList(noResultsTitle, noResultsBody),
		categories:    components.NewNameList(noCategories),
		subcategories: components.NewNameList(noSubcategory),
		categoryItems: components.NewItemList(noResultsTitle, noResultsBody),
		stockModal:    components.NewInputModal(),
		spinner:       sp,
		statsLoading:  true,
	}

	m.searchCh = make(chan domain.SearchState, 1)
	m.unsubscribe = m.search.Subscribe(NewChannelObserver(m.searchCh))
	m.searchState = m.search.State()

	return m
}

// Init starts the first loads
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		LoadStatsCmd(m.catalog),
		WaitForSearchStateCmd(m.searchCh),
		m.spinner.Tick,
	)
}

// Screen returns the active tab
func (m Model) Screen() Screen {
	return m.screen
}

// Update handles all messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.updateLayout()
		return m, nil

	case tea.KeyMsg:
		return m.handleKeyMsg(msg)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case SearchStateMsg:
		m.applySearchState(msg.State)
		return m, WaitForSearchStateCmd(m.searchCh)

	case StatsLoadedMsg:
		m.stats = msg.Stats
		m.statsLoading = false
		return m, nil

	case LowStockLoadedMsg:
		m.lowStock.SetItems(msg.Items)
		m.measureTypes = msg.MeasureTypes
		m.lowStockLoading = false
		m.lowStockLoaded = true
		return m, nil

	case BrandsLoadedMsg:
		m.brands.SetEntries(components.BrandEntries(msg.Brands))
		m.brandsLoading = false
		m.brandsLoaded = true
		return m, nil

	case BrandItemsLoadedMsg:
		if m.brand != nil && m.brand.ID == msg.Brand.ID {
			m.brandItems.SetItems(msg.Items)
			m.brandItemsLoading = false
		}
		return m, nil

	case CategoriesLoadedMsg:
		m.categories.SetEntries(components.CategoryEntries(msg.Categories))
		m.categoriesLoading = false
		m.categoriesLoaded = true
		return m, nil

	case SubcategoriesLoadedMsg:
		if m.category != nil && m.category.ID == msg.Category.ID {
			all := components.Entry{Name: allItemsPrefix + msg.Category.Name}
			m.subcategories.SetEntries(components.SubcategoryEntries(msg.Subcategories, all))
			m.subcategoriesLoading = false
		}
		return m, nil

	case CategoryItemsLoadedMsg:
		if m.category != nil && m.subcategory != nil &&
			m.category.ID == msg.CategoryID && m.subcategory.ID == msg.SubcategoryID {
			m.categoryItems.SetItems(msg.Items)
			m.categoryItemsLoading = false
		}
		return m, nil

	case ItemLoadedMsg:
		if m.detail != nil && msg.Item != nil && m.detail.ID == msg.Item.ID {
			item := *msg.Item
			m.detail = &item
		}
		m.detailLoading = false
		return m, nil

	case StockUpdatedMsg:
		if m.detail != nil && m.detail.ID == msg.ItemID {
			available := msg.Available
			m.detail.AvailableCount = &available
		}
		m.searchResults.Patch(msg.ItemID, msg.Available)
		m.brandItems.Patch(msg.ItemID, msg.Available)
		m.categoryItems.Patch(msg.ItemID, msg.Available)
		cmds := []tea.Cmd{m.setStatus("موجودی به‌روز شد", false), LoadStatsCmd(m.catalog)}
		if m.lowStockLoaded {
			cmds = append(cmds, LoadLowStockCmd(m.catalog))
		}
		return m, tea.Batch(cmds...)

	case URLOpenedMsg:
		return m, nil

	case ErrMsg:
		m.logger.Error("command failed", "context", msg.Context, "error", msg.Err)
		m.statsLoading = false
		m.lowStockLoading = false
		m.brandsLoading = false
		m.brandItemsLoading = false
		m.categoriesLoading = false
		m.subcategoriesLoading = false
		m.categoryItemsLoading = false
		m.detailLoading = false
		return m, m.setStatus(msg.Error(), true)

	case ClearStatusMsg:
		if msg.Seq == m.statusSeq {
			m.status = ""
			m.statusIsErr = false
		}
		return m, nil
	}

	// Cursor blink and other input housekeeping
	return m.forwardToInputs(msg)
}

func (m *Model) setStatus(text string, isErr bool) tea.Cmd {
	m.statusSeq++
	m.status = text
	m.statusIsErr = isErr
	return ClearStatusCmd(m.statusSeq, statusDuration)
}

func (m *Model) applySearchState(state domain.SearchState) {
	m.searchState = state
	if !sameItems(m.searchResults.Items(), state.Results) || m.searchResults.FilterActive() {
		m.searchResults.SetItems(state.Results)
	}
	if len(state.Results) == 0 && m.searchResults.Focused() {
		m.focusSearchBox()
	}
}

func sameItems(a, b []domain.Item) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].ID != b[i].ID {
			return false
		}
	}
	return true
}

func (m Model) forwardToInputs(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch {
	case m.stockModal.IsVisible():
		m.stockModal, cmd, _ = m.stockModal.Update(msg)
	case m.screen == ScreenSearch && m.searchBox.Focused():
		m.searchBox, cmd, _ = m.searchBox.Update(msg)
	case m.screen == ScreenSearch:
		m.searchResults, cmd, _ = m.searchResults.Update(msg)
	case m.screen == ScreenLowStock:
		m.lowStock, cmd, _ = m.lowStock.Update(msg)
	case m.screen == ScreenBrands && m.brand != nil:
		m.brandItems, cmd, _ = m.brandItems.Update(msg)
	case m.screen == ScreenCategories && m.subcategory != nil:
		m.categoryItems, cmd, _ = m.categoryItems.Update(msg)
	}
	return m, cmd
}

func (m *Model) updateLayout() {
	bodyWidth := max(m.width-4, 20)
	bodyHeight := m.bodyHeight()

	m.searchBox.SetWidth(bodyWidth)
	// Search box takes three lines plus a blank spacer
	m.searchResults.SetSize(bodyWidth, max(bodyHeight-5, 3))
	// Low stock leaves a line for the thresholds
	m.lowStock.SetSize(bodyWidth, max(bodyHeight-2, 3))
	m.brands.SetSize(bodyWidth, bodyHeight)
	m.brandItems.SetSize(bodyWidth, max(bodyHeight-2, 3))
	m.categories.SetSize(bodyWidth, bodyHeight)
	m.subcategories.SetSize(bodyWidth, max(bodyHeight-2, 3))
	m.categoryItems.SetSize(bodyWidth, max(bodyHeight-2, 3))
}

// bodyHeight is the terminal height minus header, nav bar and help line
func (m Model) bodyHeight() int {
	return max(m.height-7, 3)
}

// textInputActive reports whether keystrokes should go to a text field
func (m Model) textInputActive() bool {
	if m.stockModal.IsVisible() {
		return true
	}
	if m.detail != nil {
		return false
	}
	switch m.screen {
	case ScreenSearch:
		return m.searchBox.Focused() || m.searchResults.Filtering()
	case ScreenLowStock:
		return m.lowStock.Filtering()
	case ScreenBrands:
		if m.brand != nil {
			return m.brandItems.Filtering()
		}
		return m.brands.Filtering()
	case ScreenCategories:
		switch {
		case m.subcategory != nil:
			return m.categoryItems.Filtering()
		case m.category != nil:
			return m.subcategories.Filtering()
		}
		return m.categories.Filtering()
	}
	return false
}

func (m Model) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, keys.ForceQuit) {
		return m.quit()
	}

	if m.stockModal.IsVisible() {
		return m.handleStockModalKey(msg)
	}

	if m.detail != nil {
		return m.handleDetailKey(msg)
	}

	switch {
	case key.Matches(msg, keys.NextScreen):
		return m.switchScreen((m.screen + 1) % Screen(len(screenTabs)))
	case key.Matches(msg, keys.PrevScreen):
		return m.switchScreen((m.screen + Screen(len(screenTabs)) - 1) % Screen(len(screenTabs)))
	}

	if !m.textInputActive() {
		switch {
		case key.Matches(msg, keys.Quit):
			return m.quit()
		case key.Matches(msg, keys.Home):
			return m.switchScreen(ScreenHome)
		case key.Matches(msg, keys.Search):
			return m.switchScreen(ScreenSearch)
		case key.Matches(msg, keys.LowStock):
			return m.switchScreen(ScreenLowStock)
		case key.Matches(msg, keys.Brands):
			return m.switchScreen(ScreenBrands)
		case key.Matches(msg, keys.Categories):
			return m.switchScreen(ScreenCategories)
		case key.Matches(msg, keys.Refresh):
			return m.refresh()
		}
	}

	switch m.screen {
	case ScreenSearch:
		return m.handleSearchKey(msg)
	case ScreenLowStock:
		var cmd tea.Cmd
		var chosen bool
		m.lowStock, cmd, chosen = m.lowStock.Update(msg)
		if chosen {
			return m.openDetail(*m.lowStock.Selected())
		}
		return m, cmd
	case ScreenBrands:
		return m.handleBrandsKey(msg)
	case ScreenCategories:
		return m.handleCategoriesKey(msg)
	}
	return m, nil
}

func (m Model) handleSearchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.searchBox.Focused() {
		var cmd tea.Cmd
		var action components.SearchAction
		m.searchBox, cmd, action = m.searchBox.Update(msg)

		switch action {
		case components.SearchChanged:
			m.search.SetQuery(m.searchBox.Value())
		case components.SearchSubmit:
			m.search.Search()
		case components.SearchClear:
			m.search.Clear()
		case components.SearchFocusResults:
			if m.searchResults.Len() > 0 {
				m.searchBox.Blur()
				m.searchResults.SetFocused(true)
			}
		}
		return m, cmd
	}

	// Results have focus
	if !m.searchResults.Filtering() {
		backToInput := key.Matches(msg, components.ListKeys.Up) && m.searchResults.AtTop()
		backToInput = backToInput || (key.Matches(msg, keys.Back) && !m.searchResults.FilterActive())
		if backToInput {
			return m, m.focusSearchBox()
		}
	}

	var cmd tea.Cmd
	var chosen bool
	m.searchResults, cmd, chosen = m.searchResults.Update(msg)
	if chosen {
		return m.openDetail(*m.searchResults.Selected())
	}
	return m, cmd
}

func (m *Model) focusSearchBox() tea.Cmd {
	m.searchResults.SetFocused(false)
	return m.searchBox.Focus()
}

func (m Model) handleBrandsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	var chosen bool

	if m.brand != nil {
		if key.Matches(msg, keys.Back) && !m.brandItems.FilterActive() {
			m.brand = nil
			m.brandItems.SetItems(nil)
			m.brandItemsLoading = false
			return m, nil
		}
		m.brandItems, cmd, chosen = m.brandItems.Update(msg)
		if chosen {
			return m.openDetail(*m.brandItems.Selected())
		}
		return m, cmd
	}

	m.brands, cmd, chosen = m.brands.Update(msg)
	if chosen {
		e := m.brands.Selected()
		brand := domain.Brand{ID: e.ID, Name: e.Name, Code: e.Note}
		m.brand = &brand
		m.brandItems.SetItems(nil)
		m.brandItemsLoading = true
		return m, LoadBrandItemsCmd(m.catalog, brand)
	}
	return m, cmd
}

func (m Model) handleCategoriesKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	var chosen bool

	switch {
	case m.subcategory != nil:
		if key.Matches(msg, keys.Back) && !m.categoryItems.FilterActive() {
			m.subcategory = nil
			m.categoryItems.SetItems(nil)
			m.categoryItemsLoading = false
			return m, nil
		}
		m.categoryItems, cmd, chosen = m.categoryItems.Update(msg)
		if chosen {
			return m.openDetail(*m.categoryItems.Selected())
		}
		return m, cmd

	case m.category != nil:
		if key.Matches(msg, keys.Back) && !m.subcategories.FilterActive() {
			m.category = nil
			m.subcategories.SetEntries(nil)
			m.subcategoriesLoading = false
			return m, nil
		}
		m.subcategories, cmd, chosen = m.subcategories.Update(msg)
		if chosen {
			sub := *m.subcategories.Selected()
			m.subcategory = &sub
			m.categoryItems.SetItems(nil)
			m.categoryItemsLoading = true
			return m, LoadCategoryItemsCmd(m.catalog, m.category.ID, sub.ID)
		}
		return m, cmd
	}

	m.categories, cmd, chosen = m.categories.Update(msg)
	if chosen {
		e := m.categories.Selected()
		category := domain.Category{ID: e.ID, Name: e.Name, Code: e.Note}
		m.category = &category
		m.subcategories.SetEntries(nil)
		m.subcategoriesLoading = true
		return m, LoadSubcategoriesCmd(m.catalog, category)
	}
	return m, cmd
}

func (m Model) handleDetailKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, components.DetailKeys.Back):
		m.detail = nil
		m.detailLoading = false
		return m, nil

	case key.Matches(msg, components.DetailKeys.EditStock):
		value := ""
		if m.detail.AvailableCount != nil {
			value = strconv.FormatFloat(*m.detail.AvailableCount, 'f', -1, 64)
		}
		return m, m.stockModal.Show("موجودی "+m.detail.Name, value)

	case key.Matches(msg, components.DetailKeys.OpenImage):
		if url := m.detail.ImageURL(m.apiBase); url != "" && m.launcher != nil {
			return m, OpenURLCmd(m.launcher, url)
		}
		return m, m.setStatus("این کالا تصویر ندارد", true)

	case key.Matches(msg, components.DetailKeys.OpenVideo):
		if m.detail.VideoURL != "" && m.launcher != nil {
			return m, OpenURLCmd(m.launcher, m.detail.VideoURL)
		}
		return m, m.setStatus("این کالا ویدیو ندارد", true)

	case key.Matches(msg, keys.Quit):
		return m.quit()
	}
	return m, nil
}

func (m Model) handleStockModalKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	var submitted bool
	m.stockModal, cmd, submitted = m.stockModal.Update(msg)
	if !submitted {
		return m, cmd
	}

	available, err := parseCount(m.stockModal.Value())
	if err != nil {
		m.stockModal.SetError("عدد معتبر وارد کنید")
		return m, nil
	}
	m.stockModal.Hide()
	return m, UpdateStockCmd(m.catalog, m.detail.ID, available)
}

// parseCount accepts Latin, Persian and Arabic-Indic digits
func parseCount(s string) (float64, error) {
	normalized := strings.Map(func(r rune) rune {
		switch {
		case r >= '۰' && r <= '۹':
			return '0' + (r - '۰')
		case r >= '٠' && r <= '٩':
			return '0' + (r - '٠')
		case r == '٫':
			return '.'
		}
		return r
	}, strings.TrimSpace(s))

	d, err := decimal.NewFromString(normalized)
	if err != nil {
		return 0, err
	}
	if d.IsNegative() {
		return 0, strconv.ErrRange
	}
	// Counts are kept to three decimals, enough for kg and metres
	return d.Round(3).InexactFloat64(), nil
}

func (m Model) openDetail(item domain.Item) (tea.Model, tea.Cmd) {
	m.detail = &item
	m.detailLoading = true
	return m, LoadItemCmd(m.catalog, item.ID)
}

// switchScreen changes tabs. Leaving the search tab tears the search session down.
func (m Model) switchScreen(to Screen) (tea.Model, tea.Cmd) {
	if to == m.screen {
		return m, nil
	}

	if m.screen == ScreenSearch {
		m.search.Clear()
		m.searchBox.Reset()
		m.searchResults.SetItems(nil)
		m.searchResults.SetFocused(false)
		m.searchState = domain.SearchState{}
	}

	m.screen = to

	switch to {
	case ScreenHome:
		if !m.statsLoading {
			m.statsLoading = m.stats == nil
			return m, LoadStatsCmd(m.catalog)
		}
	case ScreenSearch:
		return m, m.searchBox.Focus()
	case ScreenLowStock:
		if !m.lowStockLoaded && !m.lowStockLoading {
			m.lowStockLoading = true
			return m, LoadLowStockCmd(m.catalog)
		}
	case ScreenBrands:
		if !m.brandsLoaded && !m.brandsLoading {
			m.brandsLoading = true
			return m, LoadBrandsCmd(m.catalog)
		}
	case ScreenCategories:
		if !m.categoriesLoaded && !m.categoriesLoading {
			m.categoriesLoading = true
			return m, LoadCategoriesCmd(m.catalog)
		}
	}
	return m, nil
}

func (m Model) refresh() (tea.Model, tea.Cmd) {
	// Inside a category only that category's lists are dropped
	if m.screen == ScreenCategories && m.category != nil {
		m.catalog.RefreshCategory(m.category.ID)
		if m.subcategory != nil {
			m.categoryItemsLoading = true
			return m, LoadCategoryItemsCmd(m.catalog, m.category.ID, m.subcategory.ID)
		}
		m.subcategoriesLoading = true
		return m, LoadSubcategoriesCmd(m.catalog, *m.category)
	}

	m.catalog.Refresh()

	switch m.screen {
	case ScreenHome:
		m.statsLoading = true
		return m, LoadStatsCmd(m.catalog)
	case ScreenLowStock:
		m.lowStockLoading = true
		return m, LoadLowStockCmd(m.catalog)
	case ScreenBrands:
		if m.brand != nil {
			m.brandItemsLoading = true
			return m, LoadBrandItemsCmd(m.catalog, *m.brand)
		}
		m.brandsLoading = true
		return m, LoadBrandsCmd(m.catalog)
	case ScreenCategories:
		m.categoriesLoading = true
		return m, LoadCategoriesCmd(m.catalog)
	}
	return m, nil
}

func (m Model) quit() (tea.Model, tea.Cmd) {
	m.Shutdown()
	return m, tea.Quit
}

// Shutdown detaches from the orchestrator and stops any pending search
func (m Model) Shutdown() {
	if m.unsubscribe != nil {
		m.unsubscribe()
	}
	m.search.Close()
}
