// Package probabilites porte le magasin des photographies de probabilité :
// une seule ligne faisant foi par couple (code_risque, période), jamais de
// probabilité nulle en base, protection des lignes archivées.
package probabilites

import (
	"context"
	"fmt"
	"strings"
	"time"

	"giras/internal/logger"
	"giras/internal/models"
	"giras/internal/periodes"
	"giras/internal/scoring"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Analyse : photographie d'analyse transmise par l'appelant (saisie
// manuelle ou synchronisation de clôture). Tous les champs sont
// facultatifs, le magasin complète ce qui manque.
type Analyse struct {
	Probabilite      *int
	Commentaires     string
	Responsable      string
	DateLimiteSaisie *time.Time
	DateSaisie       *time.Time
	JoursRetard      *int
	NiveauRetard     string
}

// Demande d'écriture d'une photographie.
type Demande struct {
	CodeRisque   string
	PeriodeRef   string // référence libre, vide = période ouverte courante
	Modificateur string

	// valeur explicite, utilisée si l'analyse n'en porte pas
	Probabilite *int
	Analyse     *Analyse

	Archiver  bool
	IndObtenu string // "Oui"/"Non", vide = conserver l'existant

	// remplacement des bornes copiées depuis la période
	DateDebutPeriode *time.Time
	DateFinPeriode   *time.Time
}

// Vue : photographie relue, enrichie à la volée avec les attributs frais
// du risque. L'impact net et la criticité ne sont jamais persistés : un
// changement de formule s'applique rétroactivement aux vues historiques.
type Vue struct {
	models.RisqueProbabilite
	ImpactNet       *float64                 `json:"impact_net"`
	Criticite       *float64                 `json:"criticite"`
	NiveauCriticite *scoring.NiveauCriticite `json:"niveau_criticite"`
}

type Store struct {
	db     *gorm.DB
	schema Schema
	log    *logger.Logger
}

func NewStore(db *gorm.DB, schema Schema, log *logger.Logger) *Store {
	return &Store{db: db, schema: schema, log: log.With("composant", "probabilites")}
}

// Upsert écrit la photographie d'un risque pour une période. Précédence de
// la probabilité : analyse > valeur explicite > ligne existante. Sans
// valeur déterminable l'appel échoue (ErrProbabiliteVide) et rien n'est
// écrit : c'est le point d'application de l'invariant "pas de ligne à
// probabilité nulle".
func (s *Store) Upsert(ctx context.Context, d Demande) (*models.RisqueProbabilite, error) {
	if strings.TrimSpace(d.CodeRisque) == "" {
		return nil, fmt.Errorf("%w: code_risque obligatoire", ErrValidation)
	}

	per, err := periodes.ResoudreEnBase(ctx, s.db, d.PeriodeRef)
	if err != nil {
		return nil, err
	}
	if per == nil {
		return nil, fmt.Errorf("%w: %q", ErrPeriodeIntrouvable, d.PeriodeRef)
	}

	existante, err := s.chercher(ctx, d.CodeRisque, per)
	if err != nil {
		return nil, err
	}

	var an Analyse
	if d.Analyse != nil {
		an = *d.Analyse
	}

	var prob *int
	switch {
	case an.Probabilite != nil:
		prob = an.Probabilite
	case d.Probabilite != nil:
		prob = d.Probabilite
	case existante != nil:
		p := existante.Probabilite
		prob = &p
	}
	if prob == nil {
		return nil, ErrProbabiliteVide
	}
	if *prob < 1 || *prob > 4 {
		return nil, fmt.Errorf("%w: probabilité %d hors échelle 1..4", ErrValidation, *prob)
	}

	commentaires := strings.TrimSpace(an.Commentaires)
	if commentaires == "" && existante != nil {
		commentaires = existante.Commentaires
	}
	if commentaires == "" {
		return nil, fmt.Errorf("%w: commentaires obligatoires quand une probabilité est saisie", ErrValidation)
	}

	maintenant := time.Now()

	saisie := an.DateSaisie
	if saisie == nil {
		t := maintenant
		saisie = &t
	}
	limite := an.DateLimiteSaisie
	if limite == nil {
		limite = per.DateLimiteSaisie
	}

	joursRetard := an.JoursRetard
	if joursRetard == nil && limite != nil {
		j := JoursDeRetard(*saisie, *limite)
		joursRetard = &j
	}
	niveauRetard := an.NiveauRetard
	if niveauRetard == "" && joursRetard != nil {
		niveauRetard = NiveauDeRetard(*joursRetard)
	}

	indObtenu := d.IndObtenu
	if indObtenu == "" {
		indObtenu = models.Non
		if existante != nil {
			indObtenu = existante.IndObtenu
		}
	}

	responsable := strings.TrimSpace(an.Responsable)
	if responsable == "" && existante != nil {
		responsable = existante.Responsable
	}

	// pas de transition Archivée -> Manuelle : une ligne archivée le reste
	dejaArchivee := existante != nil && existante.EstArchivee()
	archive := models.Non
	if d.Archiver || dejaArchivee {
		archive = models.Oui
	}

	debut := d.DateDebutPeriode
	if debut == nil && !per.DateDebut.IsZero() {
		t := per.DateDebut
		debut = &t
	}
	fin := d.DateFinPeriode
	if fin == nil && !per.DateFin.IsZero() {
		t := per.DateFin
		fin = &t
	}

	// la ligne existante peut vivre sous un ancien libellé de la même
	// période : on conserve sa clé plutôt que d'en créer un doublon
	libelle := per.Libelle
	if existante != nil {
		libelle = existante.Periode
	}

	ligne := models.RisqueProbabilite{
		CodeRisque:       d.CodeRisque,
		Periode:          libelle,
		Probabilite:      *prob,
		IndObtenu:        indObtenu,
		Archive:          archive,
		Commentaires:     commentaires,
		Responsable:      responsable,
		DateLimiteSaisie: limite,
		DateSaisie:       saisie,
		JoursRetard:      joursRetard,
		NiveauRetard:     niveauRetard,
		DateDebutPeriode: debut,
		DateFinPeriode:   fin,
		DateModification: maintenant,
		Modificateur:     d.Modificateur,
	}

	archivage := d.Archiver && !dejaArchivee
	if archivage {
		ligne.DateArchivage = &maintenant
		ligne.ArchivePar = d.Modificateur
	} else if dejaArchivee {
		ligne.DateArchivage = existante.DateArchivage
		ligne.ArchivePar = existante.ArchivePar
	}

	cols := s.colonnesEcrites(archivage || dejaArchivee)

	if existante != nil {
		ligne.ID = existante.ID
		err = s.db.WithContext(ctx).Model(&models.RisqueProbabilite{}).
			Where("id = ?", existante.ID).
			Select(sansCles(cols)).
			Updates(&ligne).Error
	} else {
		// upsert en une seule instruction : deux écritures concurrentes sur
		// la même clé convergent, la dernière gagne
		err = s.db.WithContext(ctx).
			Select(cols).
			Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "code_risque"}, {Name: "periode"}},
				DoUpdates: clause.AssignmentColumns(sansCles(cols)),
			}).
			Create(&ligne).Error
	}
	if err != nil {
		return nil, err
	}

	s.log.Debug("photographie écrite",
		"code_risque", d.CodeRisque, "periode", libelle,
		"probabilite", *prob, "archive", archive)
	return &ligne, nil
}

// Supprimer efface la ou les lignes du risque pour la période, y compris
// celles écrites sous d'anciens libellés. Refusé dès qu'une ligne visée
// est archivée. À appeler quand un appelant veut effacer une saisie :
// jamais d'écriture d'une probabilité nulle.
func (s *Store) Supprimer(ctx context.Context, codeRisque, periodeRef string) (int64, error) {
	if strings.TrimSpace(codeRisque) == "" {
		return 0, fmt.Errorf("%w: code_risque obligatoire", ErrValidation)
	}

	per, err := periodes.ResoudreEnBase(ctx, s.db, periodeRef)
	if err != nil {
		return 0, err
	}
	if per == nil {
		return 0, fmt.Errorf("%w: %q", ErrPeriodeIntrouvable, periodeRef)
	}

	var lignes []models.RisqueProbabilite
	if err := s.db.WithContext(ctx).
		Where("code_risque = ? AND periode IN ?", codeRisque, per.Formes).
		Find(&lignes).Error; err != nil {
		return 0, err
	}
	for _, l := range lignes {
		if l.EstArchivee() {
			return 0, ErrArchiveProtegee
		}
	}
	if len(lignes) == 0 {
		return 0, nil
	}

	res := s.db.WithContext(ctx).
		Where("code_risque = ? AND periode IN ?", codeRisque, per.Formes).
		Delete(&models.RisqueProbabilite{})
	return res.RowsAffected, res.Error
}

// Lire retourne la photographie enrichie, ou nil si le risque n'a pas de
// ligne pour cette période.
func (s *Store) Lire(ctx context.Context, codeRisque, periodeRef string) (*Vue, error) {
	per, err := periodes.ResoudreEnBase(ctx, s.db, periodeRef)
	if err != nil {
		return nil, err
	}
	if per == nil {
		return nil, fmt.Errorf("%w: %q", ErrPeriodeIntrouvable, periodeRef)
	}

	ligne, err := s.chercher(ctx, codeRisque, per)
	if err != nil || ligne == nil {
		return nil, err
	}

	vues, err := s.enrichir(ctx, []models.RisqueProbabilite{*ligne})
	if err != nil {
		return nil, err
	}
	return &vues[0], nil
}

// Archives retourne les photographies archivées d'une période, enrichies
// à la lecture.
func (s *Store) Archives(ctx context.Context, periodeRef string) ([]Vue, error) {
	per, err := periodes.ResoudreEnBase(ctx, s.db, periodeRef)
	if err != nil {
		return nil, err
	}
	if per == nil {
		return nil, fmt.Errorf("%w: %q", ErrPeriodeIntrouvable, periodeRef)
	}

	var lignes []models.RisqueProbabilite
	if err := s.db.WithContext(ctx).
		Where("periode IN ? AND archive = ?", per.Formes, models.Oui).
		Order("code_risque asc").
		Find(&lignes).Error; err != nil {
		return nil, err
	}
	return s.enrichir(ctx, lignes)
}

func (s *Store) chercher(ctx context.Context, codeRisque string, per *periodes.Canonique) (*models.RisqueProbabilite, error) {
	var lignes []models.RisqueProbabilite
	if err := s.db.WithContext(ctx).
		Where("code_risque = ? AND periode IN ?", codeRisque, per.Formes).
		Order("id asc").
		Find(&lignes).Error; err != nil {
		return nil, err
	}
	if len(lignes) == 0 {
		return nil, nil
	}
	return &lignes[0], nil
}

// enrichir recombine chaque ligne avec les attributs frais de son risque :
// impact net, criticité et bande de sévérité sont recalculés à chaque
// lecture, jamais stockés.
func (s *Store) enrichir(ctx context.Context, lignes []models.RisqueProbabilite) ([]Vue, error) {
	if len(lignes) == 0 {
		return []Vue{}, nil
	}

	codes := make([]string, 0, len(lignes))
	vus := map[string]bool{}
	for _, l := range lignes {
		if !vus[l.CodeRisque] {
			vus[l.CodeRisque] = true
			codes = append(codes, l.CodeRisque)
		}
	}

	var risques []models.Risque
	if err := s.db.WithContext(ctx).
		Where("code_risque IN ?", codes).
		Find(&risques).Error; err != nil {
		return nil, err
	}
	parCode := make(map[string]models.Risque, len(risques))
	for _, r := range risques {
		parCode[r.CodeRisque] = r
	}

	vues := make([]Vue, 0, len(lignes))
	for _, l := range lignes {
		v := Vue{RisqueProbabilite: l}
		if r, ok := parCode[l.CodeRisque]; ok {
			v.ImpactNet = scoring.ImpactNet(r.Impact, r.EfficaciteControle)
			v.Criticite = scoring.Criticite(v.ImpactNet, l.Probabilite)
			v.NiveauCriticite = scoring.NiveauDeCriticite(v.Criticite)
		}
		vues = append(vues, v)
	}
	return vues, nil
}

// colonnesEcrites filtre les colonnes selon le descripteur de schéma du
// déploiement. date_archivage et archive_par ne sont écrites qu'en cas
// d'archivage.
func (s *Store) colonnesEcrites(archivage bool) []string {
	cols := append([]string(nil), colonnesRequises...)
	for _, c := range colonnesFacultatives {
		if !s.schema.ColonneActive(c) {
			continue
		}
		if (c == "date_archivage" || c == "archive_par") && !archivage {
			continue
		}
		cols = append(cols, c)
	}
	return cols
}

func sansCles(cols []string) []string {
	out := make([]string, 0, len(cols))
	for _, c := range cols {
		if c == "code_risque" || c == "periode" {
			continue
		}
		out = append(out, c)
	}
	return out
}
