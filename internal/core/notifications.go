package core

// User facing notification messages shared by the HTML page, the API client
// and the CLI.
const (
	NotifyCreated      = "Transaction ajoutée avec succès"
	NotifyInvalidInput = "Merci de remplir texte et montant valides"
	NotifyCreateFailed = "Erreur lors de l'ajout de la transaction"
	NotifyLoadFailed   = "Erreur lors du chargement des transactions"
)
