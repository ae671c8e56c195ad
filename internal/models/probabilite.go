package models

import "time"

// Niveaux de retard de saisie d'une probabilité
const (
	RetardAucun  = "Pas retard"
	RetardFaible = "Faible"
	RetardMoyen  = "Moyen"
	RetardEleve  = "Élevé"
)

const (
	Oui = "Oui"
	Non = "Non"
)

// Photographie de la probabilité d'un risque pour une période donnée.
// Une seule ligne par couple (code_risque, periode) ; la probabilité est
// obligatoire : pas de valeur => pas de ligne.
type RisqueProbabilite struct {
	ID uint `gorm:"primaryKey"`

	CodeRisque string `gorm:"column:code_risque;size:32;not null;uniqueIndex:idx_risque_periode"`
	Periode    string `gorm:"size:64;not null;uniqueIndex:idx_risque_periode"` // libellé canonique de la période

	Probabilite int    `gorm:"not null"`                                       // indice 1..4
	IndObtenu   string `gorm:"column:ind_obtenu;size:8;not null;default:'Non'"` // "Oui" si dérivée d'un indicateur à la clôture
	Archive     string `gorm:"size:8;not null;default:'Non'"`                   // "Oui" une fois la période clôturée

	Commentaires string `gorm:"type:text"` // justification, obligatoire quand la probabilité est saisie
	Responsable  string `gorm:"size:128"`

	DateLimiteSaisie *time.Time `gorm:"column:date_limite_saisie;type:date"`
	DateSaisie       *time.Time `gorm:"type:date"`
	JoursRetard      *int
	NiveauRetard     string `gorm:"size:16"`

	// bornes de la période copiées à l'écriture : la période source peut
	// changer après coup, la photographie reste fidèle
	DateDebutPeriode *time.Time `gorm:"type:date"`
	DateFinPeriode   *time.Time `gorm:"type:date"`

	DateModification time.Time
	Modificateur     string `gorm:"size:128"`

	DateArchivage *time.Time
	ArchivePar    string `gorm:"size:128"`
}

func (RisqueProbabilite) TableName() string { return "risques_probabilites" }

func (rp RisqueProbabilite) EstArchivee() bool { return rp.Archive == Oui }
