package tmdb

type searchResponse struct {
	Results []record `json:"results"`
}

// record covers both a search hit and a details payload; details fill the
// appended sections.
type record struct {
	ID               int64    `json:"id"`
	Title            string   `json:"title"`
	Name             string   `json:"name"`
	OriginalTitle    string   `json:"original_title"`
	OriginalName     string   `json:"original_name"`
	ReleaseDate      string   `json:"release_date"`
	FirstAirDate     string   `json:"first_air_date"`
	Overview         string   `json:"overview"`
	PosterPath       string   `json:"poster_path"`
	BackdropPath     string   `json:"backdrop_path"`
	OriginalLanguage string   `json:"original_language"`
	VoteAverage      *float64 `json:"vote_average"`
	VoteCount        int      `json:"vote_count"`
	Runtime          *int     `json:"runtime"`
	EpisodeRunTime   []int    `json:"episode_run_time"`
	IMDbID           string   `json:"imdb_id"`
	Genres           []genre  `json:"genres"`
	Credits          credits  `json:"credits"`
	CreatedBy        []person `json:"created_by"`
	Videos           struct {
		Results []video `json:"results"`
	} `json:"videos"`
	AlternativeTitles struct {
		Titles  []altTitle `json:"titles"`
		Results []altTitle `json:"results"`
	} `json:"alternative_titles"`
	ExternalIDs struct {
		IMDbID string `json:"imdb_id"`
	} `json:"external_ids"`
}

type genre struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

type credits struct {
	Cast []castMember `json:"cast"`
	Crew []crewMember `json:"crew"`
}

type castMember struct {
	Name      string `json:"name"`
	Character string `json:"character"`
}

type crewMember struct {
	Name string `json:"name"`
	Job  string `json:"job"`
}

type person struct {
	Name string `json:"name"`
}

type video struct {
	Key  string `json:"key"`
	Site string `json:"site"`
	Type string `json:"type"`
}

type altTitle struct {
	Title string `json:"title"`
}
