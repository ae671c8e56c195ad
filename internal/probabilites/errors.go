package probabilites

import "errors"

// Taxonomie d'erreurs du noyau. Les handlers les traduisent en codes HTTP,
// le magasin ne fait que les produire.
var (
	// écriture refusée : aucune probabilité déterminable, la ligne
	// n'existerait qu'avec une valeur nulle
	ErrProbabiliteVide = errors.New("probabilité vide : aucune valeur déterminable")

	// suppression refusée : au moins une ligne visée est archivée
	ErrArchiveProtegee = errors.New("photographie archivée : suppression interdite")

	// champ obligatoire manquant, aucune écriture effectuée
	ErrValidation = errors.New("validation")

	// la référence de période ne correspond à rien dans le catalogue
	ErrPeriodeIntrouvable = errors.New("période introuvable")
)
