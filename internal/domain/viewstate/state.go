// Package viewstate modela el estado de una tabla del portal: paginación, orden,
// filtros y búsqueda. Es estado puro; la persistencia vive en infraestructura.
package viewstate

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/jhoicas/hub-portal/internal/domain"
)

// DefaultPageSizeOptions tamaños de página ofrecidos por las tablas del portal.
var DefaultPageSizeOptions = []int{10, 25, 50, 100}

// SortRule orden por columna; el orden de la lista es la prioridad.
type SortRule struct {
	ColumnID string `json:"id"`
	Desc     bool   `json:"desc"`
}

// Pagination bloque eco del servidor (Page es 1-based). Solo lo sobrescribe un fetch exitoso.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"pageSize"`
	TotalCount int `json:"totalCount"`
	TotalPages int `json:"totalPages"`
}

// Options configuración del controlador de una pantalla.
type Options struct {
	DefaultPageSize int
	PageSizeOptions []int // vacío = cualquier tamaño > 0
	MultiSort       bool
}

// State estado de tabla de una pantalla para un usuario.
// QueryVersion sube con cada cambio de la tupla de consulta; sirve para descartar ecos de paginación obsoletos.
type State struct {
	PageIndex    int                    `json:"pageIndex"`
	PageSize     int                    `json:"pageSize"`
	Sorting      []SortRule             `json:"sorting"`
	Filters      map[string]FilterValue `json:"filters"`
	SearchTerm   string                 `json:"searchTerm"`
	Branches     []string               `json:"filials"`
	Pagination   Pagination             `json:"pagination"`
	QueryVersion uint64                 `json:"queryVersion"`
}

// New crea el estado por defecto de una pantalla.
func New(opts Options) State {
	size := opts.DefaultPageSize
	if size <= 0 {
		size = 10
	}
	return State{
		PageIndex:  0,
		PageSize:   size,
		Sorting:    []SortRule{},
		Filters:    map[string]FilterValue{},
		Pagination: Pagination{Page: 1, PageSize: size},
	}
}

func (s *State) touch() {
	s.QueryVersion++
}

// resetPage vuelve a la primera página: cambiar el conjunto de resultados invalida la posición actual.
func (s *State) resetPage() {
	s.PageIndex = 0
	s.Pagination.Page = 1
}

// SetPageIndex fija la página actual. No se acota contra TotalPages; eso es responsabilidad del llamador.
func (s *State) SetPageIndex(n int) error {
	if n < 0 {
		return fmt.Errorf("%w: pageIndex debe ser >= 0", domain.ErrInvalidInput)
	}
	s.PageIndex = n
	s.Pagination.Page = n + 1
	s.touch()
	return nil
}

// SetPageSize cambia el tamaño de página y vuelve a la página 0.
func (s *State) SetPageSize(size int, opts Options) error {
	if size <= 0 {
		return fmt.Errorf("%w: pageSize debe ser > 0", domain.ErrInvalidInput)
	}
	if len(opts.PageSizeOptions) > 0 && !containsInt(opts.PageSizeOptions, size) {
		return fmt.Errorf("%w: pageSize %d fuera de las opciones %v", domain.ErrInvalidInput, size, opts.PageSizeOptions)
	}
	s.PageSize = size
	s.resetPage()
	s.Pagination.PageSize = size
	s.Pagination.TotalPages = totalPages(s.Pagination.TotalCount, size)
	s.touch()
	return nil
}

// SetSorting reemplaza la lista completa. Una columna aparece a lo sumo una vez (gana la primera);
// sin MultiSort solo se conserva la regla principal.
func (s *State) SetSorting(rules []SortRule, opts Options) {
	s.Sorting = normalizeSorting(rules, opts.MultiSort)
	s.resetPage()
	s.touch()
}

// ToggleSort antepone {column, desc} quitando cualquier entrada previa de la columna.
func (s *State) ToggleSort(column string, desc bool, opts Options) error {
	column = strings.TrimSpace(column)
	if column == "" {
		return fmt.Errorf("%w: columna requerida", domain.ErrInvalidInput)
	}
	next := make([]SortRule, 0, len(s.Sorting)+1)
	next = append(next, SortRule{ColumnID: column, Desc: desc})
	for _, r := range s.Sorting {
		if r.ColumnID != column {
			next = append(next, r)
		}
	}
	s.SetSorting(next, opts)
	return nil
}

// SetFilters reemplaza el mapa de filtros. Los valores vacíos se descartan (ausencia = sin restricción).
func (s *State) SetFilters(filters map[string]FilterValue) error {
	next := make(map[string]FilterValue, len(filters))
	for key, f := range filters {
		key = strings.TrimSpace(key)
		if key == "" {
			return fmt.Errorf("%w: clave de filtro vacía", domain.ErrInvalidInput)
		}
		if err := f.Validate(); err != nil {
			return fmt.Errorf("filtro %q: %w", key, err)
		}
		if f.IsEmpty() {
			continue
		}
		next[key] = f.normalized()
	}
	s.Filters = next
	s.resetPage()
	s.touch()
	return nil
}

// SetSearchTerm reemplaza el texto libre de búsqueda.
func (s *State) SetSearchTerm(term string) {
	s.SearchTerm = strings.TrimSpace(term)
	s.resetPage()
	s.touch()
}

// SetBranches reemplaza la selección de filiales.
func (s *State) SetBranches(branches []string) {
	s.Branches = uniqueStrings(branches)
	s.resetPage()
	s.touch()
}

// SetPagination sobrescribe solo el bloque eco del servidor. Si la respuesta se pidió para
// otra versión de la consulta se descarta con ErrStaleResponse.
func (s *State) SetPagination(p Pagination, version uint64) error {
	if version != s.QueryVersion {
		return fmt.Errorf("%w: versión %d, actual %d", domain.ErrStaleResponse, version, s.QueryVersion)
	}
	if p.PageSize <= 0 {
		p.PageSize = s.PageSize
	}
	if p.TotalCount < 0 {
		p.TotalCount = 0
	}
	if p.TotalPages <= 0 {
		p.TotalPages = totalPages(p.TotalCount, p.PageSize)
	}
	s.Pagination = p
	return nil
}

// ClearFilters limpia filtros, búsqueda, filiales y página de una sola vez.
func (s *State) ClearFilters() {
	s.Filters = map[string]FilterValue{}
	s.SearchTerm = ""
	s.Branches = nil
	s.resetPage()
	s.touch()
}

// OutOfRange indica si la página actual quedó fuera del total informado por el servidor.
func (s *State) OutOfRange(totalCount int) bool {
	return s.PageIndex > 0 && s.PageIndex*s.PageSize >= totalCount
}

// Reconcile vuelve a la página 0 cuando el total se redujo por debajo de la página actual.
// Devuelve true si hubo cambio (el llamador debe volver a consultar).
func (s *State) Reconcile(totalCount int) bool {
	if !s.OutOfRange(totalCount) {
		return false
	}
	s.resetPage()
	s.touch()
	return true
}

// Offset desplazamiento de filas para la página actual.
func (s *State) Offset() int {
	return s.PageIndex * s.PageSize
}

// QueryKey clave determinista de la tupla (pageIndex, pageSize, filters, sorting, searchTerm, filiales).
// Cualquier cambio produce una clave distinta: todo texto del usuario va entre comillas.
func (s *State) QueryKey() string {
	var b strings.Builder
	b.WriteString("p=")
	b.WriteString(strconv.Itoa(s.PageIndex))
	b.WriteString("|s=")
	b.WriteString(strconv.Itoa(s.PageSize))
	b.WriteString("|o=")
	for i, r := range s.Sorting {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.Quote(r.ColumnID))
		if r.Desc {
			b.WriteString(":desc")
		} else {
			b.WriteString(":asc")
		}
	}
	b.WriteString("|f=")
	keys := make([]string, 0, len(s.Filters))
	for k := range s.Filters {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for i, k := range keys {
		if i > 0 {
			b.WriteByte(';')
		}
		b.WriteString(strconv.Quote(k))
		b.WriteByte('=')
		b.WriteString(s.Filters[k].canonical())
	}
	b.WriteString("|q=")
	b.WriteString(strconv.Quote(s.SearchTerm))
	b.WriteString("|b=")
	b.WriteString(quoteAll(s.Branches))
	return b.String()
}

func quoteAll(vals []string) string {
	q := make([]string, len(vals))
	for i, v := range vals {
		q[i] = strconv.Quote(v)
	}
	return strings.Join(q, ",")
}

func normalizeSorting(rules []SortRule, multi bool) []SortRule {
	out := make([]SortRule, 0, len(rules))
	seen := make(map[string]struct{}, len(rules))
	for _, r := range rules {
		id := strings.TrimSpace(r.ColumnID)
		if id == "" {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, SortRule{ColumnID: id, Desc: r.Desc})
		if !multi {
			break
		}
	}
	return out
}

func totalPages(totalCount, pageSize int) int {
	if pageSize <= 0 || totalCount <= 0 {
		return 0
	}
	return int(math.Ceil(float64(totalCount) / float64(pageSize)))
}

func containsInt(list []int, v int) bool {
	for _, x := range list {
		if x == v {
			return true
		}
	}
	return false
}

func uniqueStrings(in []string) []string {
	if len(in) == 0 {
		return nil
	}
	out := make([]string, 0, len(in))
	seen := make(map[string]struct{}, len(in))
	for _, v := range in {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
