package models

// Video is the static tutorial reference shown on a project page.
type Video struct {
	Title      string `json:"title"`
	Influencer string `json:"influencer"`
	Duration   string `json:"duration"`
	Thumbnail  string `json:"thumbnail"`
}

// Project is an instructional video with the products it needs.
type Project struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	Description   string    `json:"description"`
	Difficulty    string    `json:"difficulty"`
	EstimatedTime string    `json:"estimatedTime"`
	Rating        float64   `json:"rating"`
	Learnings     []string  `json:"learnings"`
	Video         Video     `json:"video"`
	Products      []Product `json:"products"`
}
