package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"giras/internal/config"
	"giras/internal/database"
	"giras/internal/handlers"
	"giras/internal/logger"
	"giras/internal/models"
	"giras/internal/probabilites"
	"giras/internal/server"

	"github.com/gin-gonic/gin"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func entier(n int) *int { return &n }

func date(annee, mois, jour int) time.Time {
	return time.Date(annee, time.Month(mois), jour, 0, 0, 0, 0, time.UTC)
}

func monterServeur(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("ouverture sqlite : %v", err)
	}
	if err := db.AutoMigrate(
		&models.Risque{}, &models.Periode{}, &models.RisqueProbabilite{},
		&models.Indicateur{}, &models.IndicateurOccurrence{}, &models.JournalAudit{},
	); err != nil {
		t.Fatalf("migrations : %v", err)
	}

	limite := date(2025, 6, 15)
	periode := models.Periode{
		Annee:            2025,
		Semestre:         entier(1),
		DateDebut:        date(2025, 1, 1),
		DateFin:          date(2025, 6, 30),
		DateLimiteSaisie: &limite,
		Statut:           models.PeriodeOuverte,
	}
	if err := db.Create(&periode).Error; err != nil {
		t.Fatalf("création période : %v", err)
	}
	risque := models.Risque{
		CodeRisque:         "R-001",
		Intitule:           "Risque de test",
		Impact:             4,
		EfficaciteControle: 50,
		Statut:             models.RisqueActif,
	}
	if err := db.Create(&risque).Error; err != nil {
		t.Fatalf("création risque : %v", err)
	}

	database.DB = db
	magasin := probabilites.NewStore(db, probabilites.SchemaParDefaut(), logger.Nop())
	handlers.Configurer(magasin, logger.Nop())

	return server.NewRouter(&config.Config{SessionSecret: "secret-de-test"})
}

func requete(t *testing.T, r *gin.Engine, methode, chemin string, corps any) *httptest.ResponseRecorder {
	t.Helper()
	var lecteur *bytes.Reader
	if corps != nil {
		b, err := json.Marshal(corps)
		if err != nil {
			t.Fatalf("encodage du corps : %v", err)
		}
		lecteur = bytes.NewReader(b)
	} else {
		lecteur = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(methode, chemin, lecteur)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Utilisateur", "agent.test")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestSaisiePuisLecture(t *testing.T) {
	r := monterServeur(t)

	w := requete(t, r, http.MethodPost, "/api/risques/R-001/probabilites", gin.H{
		"periode":      "S1-2025",
		"probabilite":  "3",
		"commentaires": "justification de test",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("saisie : code %d, corps %s", w.Code, w.Body.String())
	}

	w = requete(t, r, http.MethodGet, "/api/risques/R-001/probabilites/S1-2025", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("lecture : code %d, corps %s", w.Code, w.Body.String())
	}
	var vue probabilites.Vue
	if err := json.Unmarshal(w.Body.Bytes(), &vue); err != nil {
		t.Fatalf("décodage : %v", err)
	}
	if vue.Probabilite != 3 || vue.Modificateur != "agent.test" {
		t.Fatalf("vue inattendue : %+v", vue)
	}
	// enrichissement à la lecture : impact 4, efficacité 50, probabilité 3
	if vue.ImpactNet == nil || *vue.ImpactNet != 2 || vue.Criticite == nil || *vue.Criticite != 6 {
		t.Fatalf("enrichissement absent : %+v", vue)
	}
}

func TestProbabiliteVideEffaceLaLigne(t *testing.T) {
	r := monterServeur(t)

	w := requete(t, r, http.MethodPost, "/api/risques/R-001/probabilites", gin.H{
		"periode":      "S1-2025",
		"probabilite":  "2",
		"commentaires": "première saisie",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("saisie : code %d", w.Code)
	}

	// probabilité vide sur ligne existante non archivée : suppression
	w = requete(t, r, http.MethodPost, "/api/risques/R-001/probabilites", gin.H{
		"periode":     "S1-2025",
		"probabilite": "",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("effacement : code %d, corps %s", w.Code, w.Body.String())
	}
	var rep struct {
		Supprimees int64 `json:"supprimees"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &rep); err != nil || rep.Supprimees != 1 {
		t.Fatalf("attendu 1 suppression, obtenu %s", w.Body.String())
	}

	w = requete(t, r, http.MethodGet, "/api/risques/R-001/probabilites/S1-2025", nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("ligne encore lisible après effacement : code %d", w.Code)
	}
}

func TestSaisieSansValeurDeterminableRefusee(t *testing.T) {
	r := monterServeur(t)

	// aucune ligne existante : l'effacement ne touche rien
	w := requete(t, r, http.MethodPost, "/api/risques/R-001/probabilites", gin.H{
		"periode":     "S1-2025",
		"probabilite": "",
	})
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"supprimees":0`) {
		t.Fatalf("effacement à vide : code %d, corps %s", w.Code, w.Body.String())
	}

	// probabilité hors échelle : validation
	w = requete(t, r, http.MethodPost, "/api/risques/R-001/probabilites", gin.H{
		"periode":      "S1-2025",
		"probabilite":  "9",
		"commentaires": "x",
	})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("hors échelle : code %d attendu 400", w.Code)
	}

	// commentaires manquants : validation
	w = requete(t, r, http.MethodPost, "/api/risques/R-001/probabilites", gin.H{
		"periode":     "S1-2025",
		"probabilite": "3",
	})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("sans commentaires : code %d attendu 400", w.Code)
	}
}

func TestSuppressionArchiveeInterdite(t *testing.T) {
	r := monterServeur(t)

	w := requete(t, r, http.MethodPost, "/api/risques/R-001/probabilites", gin.H{
		"periode":      "S1-2025",
		"probabilite":  "3",
		"commentaires": "avant clôture",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("saisie : code %d", w.Code)
	}

	// clôture : la photographie devient archivée
	w = requete(t, r, http.MethodPost, "/api/periodes/cloture", gin.H{})
	if w.Code != http.StatusOK {
		t.Fatalf("clôture : code %d, corps %s", w.Code, w.Body.String())
	}

	w = requete(t, r, http.MethodDelete, "/api/risques/R-001/probabilites/S1-2025", nil)
	if w.Code != http.StatusForbidden {
		t.Fatalf("suppression d'une archive : code %d attendu 403", w.Code)
	}

	// la ligne archivée reste servie par la vue d'archives
	w = requete(t, r, http.MethodGet, "/api/periodes/S1-2025/archives", nil)
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "R-001") {
		t.Fatalf("archives : code %d, corps %s", w.Code, w.Body.String())
	}
}

func TestResolutionDePeriode(t *testing.T) {
	r := monterServeur(t)

	w := requete(t, r, http.MethodGet, "/api/periodes/resolution?ref=Semestre%201%202025", nil)
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "S1-2025") {
		t.Fatalf("résolution : code %d, corps %s", w.Code, w.Body.String())
	}

	w = requete(t, r, http.MethodGet, "/api/periodes/resolution?ref=S9-1999", nil)
	if w.Code != http.StatusOK {
		// S9-1999 ne correspond à aucun alias : repli sur la période ouverte
		t.Fatalf("repli sur la période ouverte attendu : code %d", w.Code)
	}
}

func TestJournalAlimente(t *testing.T) {
	r := monterServeur(t)

	w := requete(t, r, http.MethodPost, "/api/risques/R-001/probabilites", gin.H{
		"periode":      "S1-2025",
		"probabilite":  "3",
		"commentaires": "trace",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("saisie : code %d", w.Code)
	}

	var n int64
	if err := database.DB.Model(&models.JournalAudit{}).
		Where("entite = ? AND action = ? AND utilisateur = ?", "probabilite", "upsert", "agent.test").
		Count(&n).Error; err != nil {
		t.Fatalf("comptage journal : %v", err)
	}
	if n != 1 {
		t.Fatalf("attendu 1 entrée de journal, obtenu %d", n)
	}
}
