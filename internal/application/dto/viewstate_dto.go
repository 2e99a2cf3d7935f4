package dto

import "github.com/jhoicas/hub-portal/internal/domain/viewstate"

// ViewStateResponse estado de tabla de una pantalla, con la clave de consulta derivada.
type ViewStateResponse struct {
	Screen          string                           `json:"screen"`
	PageIndex       int                              `json:"pageIndex"`
	PageSize        int                              `json:"pageSize"`
	PageSizeOptions []int                            `json:"pageSizeOptions"`
	Sorting         []viewstate.SortRule             `json:"sorting"`
	Filters         map[string]viewstate.FilterValue `json:"filters"`
	SearchTerm      string                           `json:"searchTerm"`
	Branches        []string                         `json:"filials"`
	Pagination      viewstate.Pagination             `json:"pagination"`
	QueryVersion    uint64                           `json:"queryVersion"`
	QueryKey        string                           `json:"queryKey"`
}

type SetPageIndexRequest struct {
	PageIndex *int `json:"pageIndex" validate:"required,min=0"`
}

type SetPageSizeRequest struct {
	PageSize int `json:"pageSize" validate:"required,gt=0"`
}

type SetSortingRequest struct {
	Sorting []viewstate.SortRule `json:"sorting"`
}

// ToggleSortRequest ordena por una columna: quita la entrada previa de esa columna y la antepone.
type ToggleSortRequest struct {
	ColumnID string `json:"id" validate:"required"`
	Desc     bool   `json:"desc"`
}

type SetFiltersRequest struct {
	Filters map[string]viewstate.FilterValue `json:"filters"`
}

type SetSearchRequest struct {
	SearchTerm string `json:"searchTerm" validate:"max=200"`
}

type SetBranchesRequest struct {
	Branches []string `json:"filials"`
}

// SetPaginationRequest eco del servidor para clientes que consultan por su cuenta.
// QueryVersion es la versión del estado con la que se emitió la consulta.
type SetPaginationRequest struct {
	Pagination   viewstate.Pagination `json:"pagination"`
	QueryVersion uint64               `json:"queryVersion"`
}
