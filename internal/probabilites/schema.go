package probabilites

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Colonnes toujours écrites, quel que soit le déploiement.
var colonnesRequises = []string{
	"code_risque", "periode", "probabilite", "date_modification", "archive",
}

// Colonnes facultatives : certains déploiements historiques ne les ont pas
// toutes. L'ancien système sondait information_schema à chaque appel ; ici
// le descripteur est chargé et validé une fois au démarrage.
var colonnesFacultatives = []string{
	"responsable", "date_limite_saisie", "date_saisie", "jours_retard",
	"niveau_retard", "commentaires", "ind_obtenu", "modificateur",
	"date_debut_periode", "date_fin_periode", "date_archivage", "archive_par",
}

// Schema décrit les colonnes facultatives réellement présentes dans la
// table risques_probabilites du déploiement courant.
type Schema struct {
	Version  int      `yaml:"version"`
	Colonnes []string `yaml:"colonnes"`

	actives map[string]bool
}

// SchemaParDefaut : toutes les colonnes facultatives présentes.
func SchemaParDefaut() Schema {
	s := Schema{Version: 1, Colonnes: append([]string(nil), colonnesFacultatives...)}
	s.indexer()
	return s
}

// ChargerSchema lit le descripteur YAML. Chemin vide => schéma complet.
func ChargerSchema(chemin string) (Schema, error) {
	if chemin == "" {
		return SchemaParDefaut(), nil
	}

	data, err := os.ReadFile(chemin)
	if err != nil {
		return Schema{}, fmt.Errorf("lecture du descripteur de schéma: %w", err)
	}

	var s Schema
	if err := yaml.Unmarshal(data, &s); err != nil {
		return Schema{}, fmt.Errorf("descripteur de schéma invalide: %w", err)
	}
	if s.Version < 1 {
		return Schema{}, fmt.Errorf("descripteur de schéma: version %d non gérée", s.Version)
	}

	connues := map[string]bool{}
	for _, c := range colonnesFacultatives {
		connues[c] = true
	}
	for _, c := range s.Colonnes {
		if !connues[c] {
			return Schema{}, fmt.Errorf("descripteur de schéma: colonne inconnue %q", c)
		}
	}

	s.indexer()
	return s, nil
}

func (s *Schema) indexer() {
	s.actives = make(map[string]bool, len(s.Colonnes))
	for _, c := range s.Colonnes {
		s.actives[c] = true
	}
}

// ColonneActive dit si une colonne peut être écrite. Les colonnes requises
// le sont toujours.
func (s Schema) ColonneActive(nom string) bool {
	for _, c := range colonnesRequises {
		if c == nom {
			return true
		}
	}
	return s.actives[nom]
}
