package helper

import (
	"math"
	"net/url"
	"strconv"
)

// MaxRecordPerPage caps page size; maxPage keeps Skip well inside int64.
const (
	MaxRecordPerPage = 100
	maxPage          = math.MaxInt32 / MaxRecordPerPage
)

type Page struct {
	Page          int   `json:"current_page"`
	RecordPerPage int   `json:"records_per_page"`
	Total         int64 `json:"total"`
	TotalPages    int64 `json:"total_pages"`
}

// Skip is the number of records before this page.
func (p Page) Skip() int64 {
	return int64(p.Page-1) * int64(p.RecordPerPage)
}

func (p Page) WithTotal(total int64) Page {
	p.Total = total
	p.TotalPages = (total + int64(p.RecordPerPage) - 1) / int64(p.RecordPerPage)
	return p
}

func NewPage(page, recordPerPage, defaultSize int) Page {
	if page < 1 {
		page = 1
	}
	if page > maxPage {
		page = maxPage
	}
	if recordPerPage < 1 {
		recordPerPage = defaultSize
	}
	if recordPerPage > MaxRecordPerPage {
		recordPerPage = MaxRecordPerPage
	}
	return Page{Page: page, RecordPerPage: recordPerPage}
}

// PageFromQuery reads page and recordPerPage (or limit) from the query string.
func PageFromQuery(q url.Values, defaultSize int) Page {
	page, _ := strconv.Atoi(q.Get("page"))
	size, err := strconv.Atoi(q.Get("recordPerPage"))
	if err != nil {
		size, _ = strconv.Atoi(q.Get("limit"))
	}
	return NewPage(page, size, defaultSize)
}
