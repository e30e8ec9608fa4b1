package entity

// Progress counts the page jobs of one price list by status.
type Progress struct {
	ListID     string `json:"list_id"`
	Total      int    `json:"total"`
	Pending    int    `json:"pending"`
	Processing int    `json:"processing"`
	Processed  int    `json:"processed"`
	Failed     int    `json:"failed"`
}

// Done reports whether every job of the list reached a terminal status.
func (p Progress) Done() bool {
	return p.Total > 0 && p.Processed+p.Failed == p.Total
}

// Percent is the share of finished jobs, 0 to 100.
func (p Progress) Percent() float64 {
	if p.Total == 0 {
		return 0
	}
	return float64(p.Processed+p.Failed) * 100 / float64(p.Total)
}
