package types

import "time"

// DefaultViewerName is shown until the visitor tells us their name.
const DefaultViewerName = "Traveler"

// DefaultPlaceholder is used when the catalog does not name one.
const DefaultPlaceholder = "{{firstName}}"

// Slider ids understood by the ROI calculator.
const (
	SliderAvgHourlyCost     = "avgHourlyCost"
	SliderHoursSavedPerWeek = "hoursSavedPerWeek"
	SliderTeamSize          = "teamSize"
)

// Pricing describes what implementing a chapter costs
type Pricing struct {
	CostUSD   float64 `json:"costUSD" yaml:"costUSD"`
	ImplHours float64 `json:"implHours" yaml:"implHours"`
}

// Savings describes what a chapter gives back once automated
type Savings struct {
	HoursPerWeek   float64 `json:"hoursPerWeek" yaml:"hoursPerWeek"`
	DollarsPerYear float64 `json:"dollarsPerYear" yaml:"dollarsPerYear"`
}

// Chapter is one automation offered on the map
type Chapter struct {
	ID        string   `json:"id" yaml:"id"`
	Title     string   `json:"title" yaml:"title"`
	Summary   string   `json:"summary" yaml:"summary"`
	Tools     []string `json:"tools" yaml:"tools"`
	Pricing   Pricing  `json:"pricing" yaml:"pricing"`
	Savings   Savings  `json:"savings" yaml:"savings"`
	HoverInfo []string `json:"hoverInfo" yaml:"hoverInfo"`
}

// Package is a pre-bundled offer covering a fixed set of chapters
type Package struct {
	Tier               string   `json:"tier" yaml:"tier"`
	PriceUSD           float64  `json:"priceUSD" yaml:"priceUSD"`
	Description        string   `json:"description" yaml:"description"`
	Features           []string `json:"features" yaml:"features"`
	IncludedChapterIDs []string `json:"includedChapterIds" yaml:"includedChapterIds"`
}

// Slider bounds one ROI input
type Slider struct {
	ID      string  `json:"id" yaml:"id"`
	Label   string  `json:"label" yaml:"label"`
	Min     float64 `json:"min" yaml:"min"`
	Max     float64 `json:"max" yaml:"max"`
	Step    float64 `json:"step" yaml:"step"`
	Default float64 `json:"default" yaml:"default"`
}

// Assumptions holds the constants behind the ROI formula
type Assumptions struct {
	WorkingWeeksPerYear float64  `json:"workingWeeksPerYear" yaml:"workingWeeksPerYear"`
	Notes               []string `json:"notes,omitempty" yaml:"notes,omitempty"`
}

// ROIConfig groups the slider definitions and assumptions
type ROIConfig struct {
	Sliders     []Slider    `json:"sliders" yaml:"sliders"`
	Assumptions Assumptions `json:"assumptions" yaml:"assumptions"`
}

// Viewer configures how the visitor is addressed
type Viewer struct {
	FirstNamePlaceholder string `json:"firstNamePlaceholder" yaml:"firstNamePlaceholder"`
}

// Brand names the company presenting the journey
type Brand struct {
	CompanyName string `json:"companyName" yaml:"companyName"`
	Tagline     string `json:"tagline,omitempty" yaml:"tagline,omitempty"`
}

// Catalog is the read-only document every journey is built from
type Catalog struct {
	Brand    Brand     `json:"brand" yaml:"brand"`
	Viewer   Viewer    `json:"viewer" yaml:"viewer"`
	Chapters []Chapter `json:"chapters" yaml:"chapters"`
	Packages []Package `json:"packages" yaml:"packages"`
	ROI      ROIConfig `json:"roi" yaml:"roi"`
}

// CartItem is a snapshot of a chapter taken when it was added
type CartItem struct {
	ID         string  `json:"id"`
	Title      string  `json:"title"`
	Price      float64 `json:"price"`
	Savings    float64 `json:"savings"`
	HoursSaved float64 `json:"hoursSaved"`
}

// ROIInputs are the three values driven by the sliders
type ROIInputs struct {
	AvgHourlyCost     float64 `json:"avgHourlyCost"`
	HoursSavedPerWeek float64 `json:"hoursSavedPerWeek"`
	TeamSize          float64 `json:"teamSize"`
}

// ROIInputsPatch carries a subset of ROIInputs; nil fields are left alone.
type ROIInputsPatch struct {
	AvgHourlyCost     *float64 `json:"avgHourlyCost,omitempty"`
	HoursSavedPerWeek *float64 `json:"hoursSavedPerWeek,omitempty"`
	TeamSize          *float64 `json:"teamSize,omitempty"`
}

// Page names one of the five screens
type Page string

const (
	PageLanding  Page = "landing"
	PageMap      Page = "map"
	PageChapter  Page = "chapter"
	PageROI      Page = "roi"
	PageCheckout Page = "checkout"
)

// CheckoutStage tracks the simulated payment
type CheckoutStage string

const (
	CheckoutIdle        CheckoutStage = "idle"
	CheckoutProcessing  CheckoutStage = "processing"
	CheckoutSucceeded   CheckoutStage = "succeeded"
	CheckoutCelebrating CheckoutStage = "celebrating"
)

// CheckoutStatus is transient and never persisted
type CheckoutStatus struct {
	Stage        CheckoutStage `json:"stage"`
	Confirmation string        `json:"confirmation,omitempty"`
}

// State is the whole session. Values are replaced, never edited in place.
type State struct {
	ViewerName       string         `json:"viewerName"`
	Cart             []CartItem     `json:"cart"`
	SelectedChapters []string       `json:"selectedChapters"`
	SelectedPackage  *Package       `json:"selectedPackage"`
	ROIInputs        ROIInputs      `json:"roiInputs"`
	CurrentPage      Page           `json:"currentPage"`
	IsLoading        bool           `json:"isLoading"`
	Checkout         CheckoutStatus `json:"checkout"`
}

// ActionType identifies a reducer action
type ActionType string

const (
	ActionSetViewerName       ActionType = "SET_VIEWER_NAME"
	ActionAddToCart           ActionType = "ADD_TO_CART"
	ActionRemoveFromCart      ActionType = "REMOVE_FROM_CART"
	ActionUpdateROIInputs     ActionType = "UPDATE_ROI_INPUTS"
	ActionSelectPackage       ActionType = "SELECT_PACKAGE"
	ActionSetCurrentPage      ActionType = "SET_CURRENT_PAGE"
	ActionSetSelectedChapters ActionType = "SET_SELECTED_CHAPTERS"
	ActionResetJourney        ActionType = "RESET_JOURNEY"
	ActionSetLoading          ActionType = "SET_LOADING"
	ActionSetCheckout         ActionType = "SET_CHECKOUT"
)

// Action is the signal payload for changing state. Only the fields relevant
// to Type are read.
type Action struct {
	Type       ActionType      `json:"type"`
	ViewerName string          `json:"viewerName,omitempty"`
	ChapterID  string          `json:"chapterId,omitempty"`
	ROIInputs  *ROIInputsPatch `json:"roiInputs,omitempty"`
	Package    *Package        `json:"package,omitempty"`
	Page       Page            `json:"page,omitempty"`
	Chapters   []string        `json:"chapters,omitempty"`
	Loading    bool            `json:"loading,omitempty"`
	Checkout   *CheckoutStatus `json:"checkout,omitempty"`
}

// Timings are the delays that gate animated transitions
type Timings struct {
	BookOpen   time.Duration `json:"bookOpen"`
	MapBurn    time.Duration `json:"mapBurn"`
	PageTurn   time.Duration `json:"pageTurn"`
	Treasure   time.Duration `json:"treasure"`
	Payment    time.Duration `json:"payment"`
	HeroReturn time.Duration `json:"heroReturn"`
}

// DefaultTimings mirrors the pacing of the storybook pages.
func DefaultTimings() Timings {
	return Timings{
		BookOpen:   1500 * time.Millisecond,
		MapBurn:    2000 * time.Millisecond,
		PageTurn:   500 * time.Millisecond,
		Treasure:   3000 * time.Millisecond,
		Payment:    3000 * time.Millisecond,
		HeroReturn: 2000 * time.Millisecond,
	}
}

// DelayedNavigation is the signal payload for a timed page change
type DelayedNavigation struct {
	Page  Page          `json:"page"`
	Delay time.Duration `json:"delay"`
	// AddChapterID is added to the cart before the delay starts (map burn).
	AddChapterID string `json:"addChapterId,omitempty"`
}

// PaymentReceipt is returned by the simulated payment
type PaymentReceipt struct {
	SessionID    string    `json:"sessionId"`
	Confirmation string    `json:"confirmation"`
	AmountUSD    float64   `json:"amountUSD"`
	ProcessedAt  time.Time `json:"processedAt"`
}

// Snapshot is what gets written to storage after every change
type Snapshot struct {
	ViewerName       string     `json:"viewerName"`
	Cart             []CartItem `json:"cart"`
	SelectedChapters []string   `json:"selectedChapters"`
	SelectedPackage  *Package   `json:"selectedPackage"`
	CurrentPage      Page       `json:"currentPage"`
	ROIInputs        ROIInputs  `json:"roiInputs"`
}

// JourneyInput starts or continues a journey workflow
type JourneyInput struct {
	SessionID        string  `json:"sessionId"`
	Catalog          Catalog `json:"catalog"`
	StrictNavigation bool    `json:"strictNavigation"`
	Timings          Timings `json:"timings"`
	MaxActionsPerRun int     `json:"maxActionsPerRun"`
	ViewerName       string  `json:"viewerName,omitempty"`
	Carried          *State  `json:"carried,omitempty"`
}

// Sound cues played alongside transitions.
const (
	CueBookOpen = "book-open"
	CueMapBurn  = "map-burn"
	CuePageFlip = "page-flip"
	CueTreasure = "treasure-erupt"
	CueSuccess  = "success-fanfare"
)
