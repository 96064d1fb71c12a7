package domain

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Pagination параметры пагинации
type Pagination struct {
	Page     int `json:"page"`
	PageSize int `json:"page_size"`
}

// NewPagination создаёт параметры пагинации с валидацией
func NewPagination(page, pageSize int) Pagination {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}
	return Pagination{
		Page:     page,
		PageSize: pageSize,
	}
}

// Offset индекс первой записи страницы
func (p Pagination) Offset() int {
	return (p.Page - 1) * p.PageSize
}

// Window возвращает границы страницы в срезе длины total
func (p Pagination) Window(total int) (from, to int) {
	from = min(p.Offset(), total)
	to = min(from+p.PageSize, total)
	return from, to
}

// TotalPages количество страниц для total записей
func (p Pagination) TotalPages(total int) int {
	pages := total / p.PageSize
	if total%p.PageSize > 0 {
		pages++
	}
	return pages
}

// TaskFilter фильтры для списка задач
type TaskFilter struct {
	Status *TaskStatus `json:"status,omitempty"`
}

// Match проверяет, попадает ли задача под фильтр
func (f TaskFilter) Match(task *Task) bool {
	return f.Status == nil || task.Status == *f.Status
}

// TaskListResult результат запроса списка задач
type TaskListResult struct {
	Tasks      []*Task    `json:"tasks"`
	Total      int        `json:"total"`
	Pagination Pagination `json:"pagination"`
}
