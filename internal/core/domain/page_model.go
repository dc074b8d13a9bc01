package domain

// MaxPageSize caps the number of items returned in a single page.
const MaxPageSize = 1000

type Page struct {
	Number int
	Size   int
}

func NewPage(pageNumber, pageSize int) Page {
	pNumber := 1
	if pageNumber > 0 {
		pNumber = pageNumber
	}

	pSize := 10
	if pageSize > 0 {
		pSize = pageSize
	}
	if pSize > MaxPageSize {
		pSize = MaxPageSize
	}

	return Page{
		Number: pNumber,
		Size:   pSize,
	}
}

// Bounds returns the slice bounds of the page over a list of total items.
// Pages past the end of the list, or with a non positive number or size,
// are empty.
func (p Page) Bounds(total int) (int, int) {
	if total <= 0 || p.Number <= 0 || p.Size <= 0 {
		return 0, 0
	}
	// Compare by division so that huge numbers can't overflow the product.
	pages := total / p.Size
	if total%p.Size != 0 {
		pages++
	}
	if p.Number-1 >= pages {
		return total, total
	}
	start := (p.Number - 1) * p.Size
	end := total
	if total-start > p.Size {
		end = start + p.Size
	}
	return start, end
}
