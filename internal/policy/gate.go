package policy

import (
	"github.com/KAMDEMJERRY/cadastre-backend/internal/gate"
	"github.com/KAMDEMJERRY/cadastre-backend/internal/models"
)

// Resource type names registered on the gate.
const (
	ResourceUser        = "user"
	ResourceLotissement = "lotissement"
	ResourceBloc        = "bloc"
	ResourceParcelle    = "parcelle"
	ResourceDocument    = "document"
)

// NewGate wires the action table:
//
//	list/view                any resource       authenticated
//	create/update/delete     user + hierarchy   administrateur cadastral or super admin
//	assign_role              user               super administrateur only
//	export                   parcelle           proprietaire (ownership checked per record)
func NewGate() *gate.Gate[*models.User] {
	g := gate.NewGate[*models.User]()

	reads := []gate.Action{gate.ActionList, gate.ActionView}
	writes := []gate.Action{gate.ActionCreate, gate.ActionUpdate, gate.ActionDelete}

	for _, res := range []string{ResourceUser, ResourceLotissement, ResourceBloc, ResourceParcelle, ResourceDocument} {
		g.Allow(res, IsAuthenticated, reads...)
		g.Allow(res, IsAdministrateurCadastralOrSuperAdmin, writes...)
	}

	g.Allow(ResourceUser, IsSuperAdministrateur, gate.ActionAssignRole)
	g.Allow(ResourceParcelle, IsProprietaire, gate.ActionExport)

	return g
}
