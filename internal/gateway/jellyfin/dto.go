package jellyfin

// AuthResponse represents the response from AuthenticateByName
type AuthResponse struct {
	User        User   `json:"User"`
	AccessToken string `json:"AccessToken"`
	ServerID    string `json:"ServerId"`
}

// User represents a Jellyfin user
type User struct {
	ID       string `json:"Id"`
	Name     string `json:"Name"`
	ServerID string `json:"ServerId"`
}

// ItemsResponse represents a paginated list of items
type ItemsResponse struct {
	Items            []Item `json:"Items"`
	TotalRecordCount int    `json:"TotalRecordCount"`
	StartIndex       int    `json:"StartIndex"`
}

// Item represents a media item or library view
type Item struct {
	ID                string    `json:"Id"`
	Name              string    `json:"Name"`
	SortName          string    `json:"SortName"`
	Overview          string    `json:"Overview"`
	Type              string    `json:"Type"`
	CollectionType    string    `json:"CollectionType,omitempty"` // For libraries: "movies", "tvshows", "music"
	DateCreated       string    `json:"DateCreated,omitempty"`
	ProductionYear    int       `json:"ProductionYear,omitempty"`
	RunTimeTicks      int64     `json:"RunTimeTicks,omitempty"` // Duration in 100-nanosecond units
	ImageTags         ImageTags `json:"ImageTags,omitempty"`
	SeriesID          string    `json:"SeriesId,omitempty"`
	SeriesName        string    `json:"SeriesName,omitempty"`
	ParentIndexNumber int       `json:"ParentIndexNumber,omitempty"` // Season number
	IndexNumber       int       `json:"IndexNumber,omitempty"`       // Episode number
	UserData          *UserData `json:"UserData,omitempty"`
}

// ImageTags contains image tag IDs for various image types
type ImageTags struct {
	Primary string `json:"Primary,omitempty"`
	Thumb   string `json:"Thumb,omitempty"`
}

// UserData contains user-specific data for an item
type UserData struct {
	PlayCount  int  `json:"PlayCount"`
	IsFavorite bool `json:"IsFavorite"`
	Played     bool `json:"Played"`
}
