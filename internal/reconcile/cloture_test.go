package reconcile

import (
	"context"
	"testing"

	"giras/internal/logger"
	"giras/internal/models"
	"giras/internal/probabilites"

	"gorm.io/gorm"
)

func chaine(s string) *string { return &s }

func flottant(f float64) *float64 { return &f }

func creerRisqueQuantitatif(t *testing.T, db *gorm.DB, code, codeInd string) {
	t.Helper()
	r := models.Risque{
		CodeRisque:         code,
		Intitule:           "Risque " + code,
		Impact:             3,
		EfficaciteControle: 20,
		Nature:             models.NatureQuantitatif,
		CodeIndicateur:     chaine(codeInd),
		Statut:             models.RisqueActif,
	}
	if err := db.Create(&r).Error; err != nil {
		t.Fatalf("création risque %s : %v", code, err)
	}
}

func creerRisqueQualitatif(t *testing.T, db *gorm.DB, code string) {
	t.Helper()
	r := models.Risque{
		CodeRisque: code,
		Intitule:   "Risque " + code,
		Impact:     2,
		Nature:     models.NatureQualitatif,
		Statut:     models.RisqueActif,
	}
	if err := db.Create(&r).Error; err != nil {
		t.Fatalf("création risque %s : %v", code, err)
	}
}

func TestCloturePeriode(t *testing.T) {
	db := ouvrirBase(t)
	creerPeriodeOuverte(t, db)
	store := probabilites.NewStore(db, probabilites.SchemaParDefaut(), logger.Nop())
	ctx := context.Background()

	// risque quantitatif : probabilité dérivée de l'indicateur à la clôture
	creerRisqueQuantitatif(t, db, "R-QT", "IND-01")
	ind := models.Indicateur{
		CodeIndicateur: "IND-01",
		Intitule:       "Taux d'incidents",
		Seuil1:         chaine("10"),
		Seuil2:         chaine("20"),
		Seuil3:         chaine("30"),
		Sens:           "Défavorable",
		Statut:         models.IndicateurActif,
	}
	if err := db.Create(&ind).Error; err != nil {
		t.Fatalf("création indicateur : %v", err)
	}
	occ := models.IndicateurOccurrence{
		CodeIndicateur: "IND-01",
		Periode:        "Semestre 1 2025",
		Valeur:         flottant(25), // entre s2 et s3 => indice 3
	}
	if err := db.Create(&occ).Error; err != nil {
		t.Fatalf("création occurrence : %v", err)
	}

	// risque qualitatif : la saisie manuelle existante est archivée telle quelle
	creerRisqueQualitatif(t, db, "R-QL")
	deux := 2
	if _, err := store.Upsert(ctx, probabilites.Demande{
		CodeRisque:   "R-QL",
		Modificateur: "agent",
		Analyse: &probabilites.Analyse{
			Probabilite:  &deux,
			Commentaires: "appréciation du comité",
		},
	}); err != nil {
		t.Fatalf("saisie manuelle : %v", err)
	}

	// risque sans indicateur ni saisie : ignoré, la clôture continue
	creerRisqueQualitatif(t, db, "R-VIDE")

	bilan, err := CloturerPeriode(ctx, db, store, logger.Nop(), "", "dga")
	if err != nil {
		t.Fatalf("clôture : %v", err)
	}
	if bilan.Derivees != 1 || bilan.Reprises != 1 || bilan.Ignorees != 1 {
		t.Fatalf("bilan inattendu : %+v", bilan)
	}
	if !bilan.Cloturee {
		t.Fatal("période non clôturée dans le bilan")
	}

	var qt models.RisqueProbabilite
	if err := db.Where("code_risque = ?", "R-QT").First(&qt).Error; err != nil {
		t.Fatalf("photographie R-QT absente : %v", err)
	}
	if qt.Probabilite != 3 || qt.IndObtenu != models.Oui || qt.Archive != models.Oui {
		t.Fatalf("dérivation inattendue : %+v", qt)
	}
	if qt.ArchivePar != "dga" || qt.DateArchivage == nil {
		t.Fatalf("traçabilité d'archivage absente : %+v", qt)
	}

	var ql models.RisqueProbabilite
	if err := db.Where("code_risque = ?", "R-QL").First(&ql).Error; err != nil {
		t.Fatalf("photographie R-QL absente : %v", err)
	}
	if ql.Probabilite != 2 || ql.IndObtenu != models.Non || ql.Archive != models.Oui {
		t.Fatalf("reprise inattendue : %+v", ql)
	}
	if ql.Commentaires != "appréciation du comité" {
		t.Fatalf("commentaires perdus : %q", ql.Commentaires)
	}

	var per models.Periode
	if err := db.First(&per).Error; err != nil {
		t.Fatalf("relecture période : %v", err)
	}
	if per.Statut != models.PeriodeCloturee {
		t.Fatalf("statut attendu %q, obtenu %q", models.PeriodeCloturee, per.Statut)
	}

	// une fois clôturée, une nouvelle clôture est refusée
	if _, err := CloturerPeriode(ctx, db, store, logger.Nop(), per.ID, "dga"); err == nil {
		t.Fatal("reclôture acceptée")
	}
}
